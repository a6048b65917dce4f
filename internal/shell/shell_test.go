package shell

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/easelterm/easel/internal/protocol"
	"github.com/easelterm/easel/internal/session"
)

type fakeCanvas struct {
	kind string
	msgs []tea.Msg
}

func (c *fakeCanvas) Init() tea.Cmd { return nil }

func (c *fakeCanvas) Update(msg tea.Msg) (Canvas, tea.Cmd) {
	c.msgs = append(c.msgs, msg)
	return c, nil
}

func (c *fakeCanvas) View(width, height int) string { return "canvas body" }
func (c *fakeCanvas) Kind() string                  { return c.kind }
func (c *fakeCanvas) Title() string                 { return "Fake" }

func (c *fakeCanvas) Bindings() []KeyBinding {
	return []KeyBinding{
		{Keys: []string{"j"}, Action: "fake.down", Description: "down", Scopes: []string{c.kind}},
	}
}

type fakeSession struct {
	scenario  string
	selected  []any
	cancelled []string
	alerts    []protocol.AlertPayload
	gate      session.AlertGate
	lost      bool
	done      chan struct{}
}

func newFakeSession() *fakeSession {
	return &fakeSession{scenario: "test", done: make(chan struct{})}
}

func (s *fakeSession) Scenario() string { return s.scenario }

func (s *fakeSession) SendSelected(p any) error {
	s.selected = append(s.selected, p)
	return nil
}

func (s *fakeSession) SendCancelled(r string) error {
	s.cancelled = append(s.cancelled, r)
	return nil
}

func (s *fakeSession) RaiseAlert(id string, p protocol.AlertPayload) bool {
	if !s.gate.Raise(id) {
		return false
	}
	s.alerts = append(s.alerts, p)
	return true
}

func (s *fakeSession) ClearAlert(id string)       { s.gate.Clear(id) }
func (s *fakeSession) Lost() bool                 { return s.lost }
func (s *fakeSession) Done() <-chan struct{}      { return s.done }
func (s *fakeSession) terminalEnvelopeCount() int { return len(s.selected) + len(s.cancelled) }

func newTestShell(kind string) (Model, *fakeCanvas, *fakeSession) {
	canvas := &fakeCanvas{kind: kind}
	sess := newFakeSession()
	m := New(canvas, sess, zerolog.Nop())
	m.width, m.height = 80, 24
	return m, canvas, sess
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want shell.Model", next)
	}
	return model, cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "f1":
		return tea.KeyMsg{Type: tea.KeyF1}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a quit command, got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestAtMostOneTerminalEnvelope(t *testing.T) {
	m, _, sess := newTestShell("notes")

	m, cmd := step(t, m, SelectMsg{Payload: map[string]string{"action": "open"}})
	isQuit(t, cmd)
	if !m.Finished() {
		t.Fatal("terminal envelope should mark the shell finished")
	}

	// A second terminal intent must be swallowed whole.
	m, cmd = step(t, m, CancelMsg{Reason: "late"})
	if cmd != nil {
		t.Fatal("frozen shell emitted a command")
	}
	if got := sess.terminalEnvelopeCount(); got != 1 {
		t.Fatalf("terminal envelopes = %d, want 1", got)
	}
	if len(sess.cancelled) != 0 {
		t.Fatal("cancelled sent after selected")
	}
	_ = m
}

func TestQuitGestureCancels(t *testing.T) {
	m, _, sess := newTestShell("calculator")

	m, cmd := step(t, m, keyMsg("ctrl+c"))
	isQuit(t, cmd)
	if len(sess.cancelled) != 1 || sess.cancelled[0] != "interrupted" {
		t.Fatalf("cancelled = %v", sess.cancelled)
	}
	if len(sess.selected) != 0 {
		t.Fatal("selected sent on quit")
	}
	_ = m
}

func TestNavigateHandoffFreezesUI(t *testing.T) {
	m, canvas, sess := newTestShell("notes")

	m, _ = step(t, m, keyMsg("ctrl+g"))
	if m.modal != ModalNavigator {
		t.Fatal("navigator did not open")
	}

	// Shortcut key with an empty query activates immediately.
	m, cmd := step(t, m, keyMsg("c"))
	isQuit(t, cmd)

	if len(sess.selected) != 1 {
		t.Fatalf("selected envelopes = %d, want 1", len(sess.selected))
	}
	nav, ok := sess.selected[0].(protocol.NavigatePayload)
	if !ok {
		t.Fatalf("payload type %T", sess.selected[0])
	}
	if nav.Action != protocol.ActionNavigate || nav.Canvas != "calculator" {
		t.Fatalf("navigate payload = %+v", nav)
	}

	// No UI change after the handoff: keys vanish, view is blank.
	before := len(canvas.msgs)
	m, _ = step(t, m, keyMsg("x"))
	if len(canvas.msgs) != before {
		t.Fatal("canvas saw input after handoff")
	}
	if m.View() != "" {
		t.Fatal("view rendered after handoff")
	}
}

func TestNavigatorInputPriority(t *testing.T) {
	m, canvas, _ := newTestShell("kanban")

	m, _ = step(t, m, keyMsg("ctrl+g"))
	before := len(canvas.msgs)

	// "j" is bound by the canvas but the overlay owns input now.
	m, _ = step(t, m, keyMsg("j"))
	if len(canvas.msgs) != before {
		t.Fatal("canvas received a key while the navigator was open")
	}
	if m.nav == nil || m.nav.query != "j" {
		t.Fatalf("navigator did not take the key; query=%q", m.nav.query)
	}
}

func TestNonKeyMessagesReachCanvasUnderOverlay(t *testing.T) {
	m, canvas, _ := newTestShell("clock")

	m, _ = step(t, m, keyMsg("ctrl+g"))
	type tick struct{}
	m, _ = step(t, m, tick{})
	if len(canvas.msgs) == 0 {
		t.Fatal("tick dropped while overlay open")
	}
	_ = m
}

func TestHelpYieldsToNavigator(t *testing.T) {
	m, _, _ := newTestShell("timer")

	m, _ = step(t, m, keyMsg("f1"))
	if m.modal != ModalHelp {
		t.Fatal("help did not open")
	}
	m, _ = step(t, m, keyMsg("esc"))
	if m.modal != ModalNone {
		t.Fatal("help did not close")
	}

	m, _ = step(t, m, keyMsg("ctrl+g"))
	m, _ = step(t, m, keyMsg("f1"))
	if m.modal != ModalNavigator {
		t.Fatal("help opened over the navigator")
	}
}

func TestCloseOrderOutranksModals(t *testing.T) {
	m, _, _ := newTestShell("notes")

	m, _ = step(t, m, keyMsg("ctrl+g"))
	m, cmd := step(t, m, sessionClosedMsg{})
	isQuit(t, cmd)
	if !m.Closing() {
		t.Fatal("close order not recorded")
	}
	if m.View() != "" {
		t.Fatal("view rendered during teardown")
	}
}

func TestWatchCloseDelivers(t *testing.T) {
	done := make(chan struct{})
	cmd := watchClose(done)
	close(done)
	if _, ok := cmd().(sessionClosedMsg); !ok {
		t.Fatal("watchClose did not surface the close order")
	}
}

func TestAlertsDedupThroughShell(t *testing.T) {
	m, _, sess := newTestShell("sysmon")

	p := protocol.AlertPayload{Type: "cpu-high"}
	m, _ = step(t, m, AlertMsg{ID: "cpu-high", Payload: p})
	m, _ = step(t, m, AlertMsg{ID: "cpu-high", Payload: p})
	if len(sess.alerts) != 1 {
		t.Fatalf("alerts = %d, want 1 per episode", len(sess.alerts))
	}

	m, _ = step(t, m, ClearAlertMsg{ID: "cpu-high"})
	m, _ = step(t, m, AlertMsg{ID: "cpu-high", Payload: p})
	if len(sess.alerts) != 2 {
		t.Fatalf("alerts after re-breach = %d, want 2", len(sess.alerts))
	}
	_ = m
}

func TestViewComposesChrome(t *testing.T) {
	m, _, _ := newTestShell("notes")

	view := m.View()
	if !strings.Contains(view, "canvas body") {
		t.Fatal("canvas body missing from view")
	}
	lines := strings.Split(view, "\n")
	if len(lines) != 24 {
		t.Fatalf("view height = %d, want 24", len(lines))
	}
}
