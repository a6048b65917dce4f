// Package shell is the outer Bubble Tea model every canvas runs inside.
// It owns the session client, the reserved gestures, the navigator and
// help overlays, and the guarantee that at most one terminal envelope
// leaves the process, always last.
package shell

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/easelterm/easel/internal/protocol"
)

// Canvas is one mini-application. Implementations are value models in
// the Bubble Tea style; Update returns the successor canvas.
type Canvas interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Canvas, tea.Cmd)
	View(width, height int) string
	Kind() string
	Title() string
	Bindings() []KeyBinding
}

// Session is the slice of the session client the shell drives.
type Session interface {
	Scenario() string
	SendSelected(payload any) error
	SendCancelled(reason string) error
	RaiseAlert(id string, p protocol.AlertPayload) bool
	ClearAlert(id string)
	Lost() bool
	Done() <-chan struct{}
}

// Modal is the single input-priority state. Navigator outranks help;
// both outrank canvas input. Canvas-internal modals order themselves
// below all of these by only ever seeing keys in ModalNone.
type Modal int

const (
	ModalNone Modal = iota
	ModalHelp
	ModalNavigator
)

// Model wraps a canvas with session plumbing and shared chrome.
type Model struct {
	canvas Canvas
	sess   Session
	keys   *KeyRegistry
	log    zerolog.Logger

	width  int
	height int

	modal Modal
	nav   *navigator

	status    string
	statusErr bool

	terminalDone bool
	closing      bool
}

func New(canvas Canvas, sess Session, log zerolog.Logger) Model {
	return Model{
		canvas: canvas,
		sess:   sess,
		keys:   NewKeyRegistry(ReservedBindings(), canvas.Bindings()),
		log:    log,
		width:  100,
		height: 32,
		status: "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.canvas.Init(), watchClose(m.sess.Done()))
}

// watchClose surfaces the controller's close order as a message so it
// competes with nothing: whatever the modal state, the next Update ends
// the program.
func watchClose(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return sessionClosedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// After the terminal envelope nothing may change on screen.
	if m.terminalDone {
		return m, nil
	}

	switch msg := msg.(type) {
	case sessionClosedMsg:
		m.closing = true
		m.log.Info().Msg("exiting on close order")
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m.forward(msg)

	case SelectMsg:
		payload := msg.Payload
		return m.finish(protocol.KindSelected, func() error { return m.sess.SendSelected(payload) })

	case CancelMsg:
		reason := msg.Reason
		return m.finish(protocol.KindCancelled, func() error { return m.sess.SendCancelled(reason) })

	case AlertMsg:
		if m.sess.RaiseAlert(msg.ID, msg.Payload) {
			m.status = "alert: " + msg.Payload.Type
			m.statusErr = false
		}
		return m, nil

	case ClearAlertMsg:
		m.sess.ClearAlert(msg.ID)
		return m, nil

	case StatusMsg:
		m.status = msg.Text
		m.statusErr = msg.IsErr
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forward(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	scope := m.scope()
	switch {
	case m.keys.Matches(msg, ActionQuit, scope):
		return m.finish(protocol.KindCancelled, func() error { return m.sess.SendCancelled("interrupted") })

	case m.keys.Matches(msg, ActionNavigator, scope):
		if m.modal == ModalNavigator {
			m.modal = ModalNone
			m.nav = nil
		} else {
			m.modal = ModalNavigator
			m.nav = newNavigator(m.canvas.Kind())
		}
		return m, nil

	case m.keys.Matches(msg, ActionHelp, scope):
		switch m.modal {
		case ModalHelp:
			m.modal = ModalNone
		case ModalNavigator:
			// Navigator keeps priority.
		default:
			m.modal = ModalHelp
		}
		return m, nil
	}

	switch m.modal {
	case ModalNavigator:
		target, closed := m.nav.handleKey(normalizeKey(msg.String()))
		if target != "" {
			return m.finish(protocol.KindSelected, func() error {
				return m.sess.SendSelected(protocol.Navigate(target))
			})
		}
		if closed {
			m.modal = ModalNone
			m.nav = nil
		}
		return m, nil

	case ModalHelp:
		if k := normalizeKey(msg.String()); k == "esc" || k == "q" {
			m.modal = ModalNone
		}
		return m, nil
	}

	return m.forward(msg)
}

// finish delivers the terminal envelope and freezes the UI. Delivery
// failure never keeps the process alive.
func (m Model) finish(kind protocol.Kind, send func() error) (tea.Model, tea.Cmd) {
	if err := send(); err != nil {
		m.log.Error().Err(err).Str("kind", string(kind)).Msg("terminal send failed")
	}
	m.terminalDone = true
	return m, tea.Quit
}

func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.canvas.Update(msg)
	m.canvas = next
	return m, cmd
}

func (m Model) scope() string {
	switch m.modal {
	case ModalNavigator:
		return "navigator"
	case ModalHelp:
		return "help"
	}
	return m.canvas.Kind()
}

// Finished reports whether a terminal envelope has been emitted.
func (m Model) Finished() bool { return m.terminalDone }

// Closing reports whether the controller ordered shutdown.
func (m Model) Closing() bool { return m.closing }
