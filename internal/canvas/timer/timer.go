// Package timer is a countdown and stopwatch canvas. Countdown targets
// are plain durations ("10m", "1h30m") or wall-clock times
// ("until 17:30", "until 2026-03-01 09:00"). Completion raises the
// timer-finished alert condition, which re-arms whenever the timer is
// reset or restarted.
package timer

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/easelterm/easel/internal/config"
	"github.com/easelterm/easel/internal/protocol"
	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/shell"
	"github.com/easelterm/easel/internal/ui"
)

const alertID = "timer-finished"

type mode int

const (
	modeCountdown mode = iota
	modeStopwatch
)

type tickMsg time.Time

type Model struct {
	cfg   config.TimerConfig
	input textinput.Model

	mode      mode
	running   bool
	done      bool
	total     time.Duration
	remaining time.Duration
	elapsed   time.Duration
	lastTick  time.Time
}

func New(cfg config.TimerConfig) Model {
	ti := textinput.New()
	ti.Placeholder = cfg.Default
	ti.Prompt = "› "
	ti.Focus()
	return Model{cfg: cfg, input: ti}
}

func (m Model) Kind() string  { return registry.KindTimer }
func (m Model) Title() string { return "Timer" }

func (m Model) Bindings() []shell.KeyBinding {
	return []shell.KeyBinding{
		{Keys: []string{"enter"}, Action: "timer.start", Description: "start", Scopes: []string{m.Kind()}},
		{Keys: []string{"space"}, Action: "timer.pause", Description: "pause/resume", Scopes: []string{m.Kind()}},
		{Keys: []string{"r"}, Action: "timer.reset", Description: "reset", Scopes: []string{m.Kind()}},
		{Keys: []string{"s"}, Action: "timer.mode", Description: "stopwatch", Scopes: []string{m.Kind()}},
		{Keys: []string{"esc"}, Action: "timer.quit", Description: "quit", Scopes: []string{m.Kind()}},
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (shell.Canvas, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		return m.advance(time.Time(msg))
	}
	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (shell.Canvas, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, shell.Cancel("user quit")
	case "enter":
		if m.mode == modeStopwatch {
			return m.toggleRun()
		}
		if m.running {
			return m, nil
		}
		return m.start()
	}
	// Once the target field holds text, every key is text entry; the
	// space in "until 17:30" has to reach the input. Hotkeys apply only
	// while the field is empty, same rule as the navigator overlay.
	if m.input.Focused() && m.input.Value() != "" {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case " ", "space":
		return m.toggleRun()
	case "r":
		return m.reset()
	case "s":
		n, cmd := m.reset()
		if n.mode == modeCountdown {
			n.mode = modeStopwatch
			n.input.Blur()
		} else {
			n.mode = modeCountdown
			n.input.Focus()
		}
		return n, cmd
	}
	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) start() (shell.Canvas, tea.Cmd) {
	spec := strings.TrimSpace(m.input.Value())
	if spec == "" {
		spec = m.cfg.Default
	}
	d, err := ParseTarget(spec, time.Now())
	if err != nil {
		return m, shell.Error(err)
	}
	rearm := m.done
	m.total = d
	m.remaining = d
	m.running = true
	m.done = false
	m.lastTick = time.Time{}
	m.input.Blur()
	if rearm {
		return m, tea.Batch(shell.ClearAlert(alertID), tick())
	}
	return m, tick()
}

func (m Model) toggleRun() (shell.Canvas, tea.Cmd) {
	if m.mode == modeCountdown && m.total == 0 {
		return m, nil
	}
	if m.running {
		m.running = false
		return m, nil
	}
	m.running = true
	m.done = false
	m.lastTick = time.Time{}
	return m, tick()
}

// reset returns to idle. A finished timer re-arms its alert condition
// here so the next completion raises again.
func (m Model) reset() (Model, tea.Cmd) {
	rearm := m.done
	m.running = false
	m.done = false
	m.total = 0
	m.remaining = 0
	m.elapsed = 0
	m.lastTick = time.Time{}
	if m.mode == modeCountdown {
		m.input.SetValue("")
		m.input.Focus()
	}
	if rearm {
		return m, shell.ClearAlert(alertID)
	}
	return m, nil
}

func (m Model) advance(now time.Time) (shell.Canvas, tea.Cmd) {
	if !m.running {
		return m, nil
	}
	if m.lastTick.IsZero() {
		m.lastTick = now
		return m, tick()
	}
	delta := now.Sub(m.lastTick)
	if delta < 0 {
		delta = 0
	}
	m.lastTick = now

	if m.mode == modeStopwatch {
		m.elapsed += delta
		return m, tick()
	}

	m.remaining -= delta
	if m.remaining > 0 {
		return m, tick()
	}
	m.remaining = 0
	m.running = false
	m.done = true
	return m, shell.Alert(alertID, protocol.AlertPayload{
		Type:    alertID,
		Message: fmt.Sprintf("timer finished after %s", m.total),
		Data:    map[string]any{"total": m.total.String()},
	})
}

// ParseTarget turns a countdown spec into a duration from now. Bare
// durations go through time.ParseDuration; "until HH:MM" resolves to the
// next occurrence of that wall-clock time; anything richer after "until"
// is handed to dateparse.
func ParseTarget(spec string, now time.Time) (time.Duration, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, errors.New("empty timer target")
	}
	if d, err := time.ParseDuration(spec); err == nil {
		if d <= 0 {
			return 0, errors.Errorf("duration %q is not positive", spec)
		}
		return d, nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(spec, "until "))
	for _, layout := range []string{"15:04", "15:04:05"} {
		t, err := time.Parse(layout, rest)
		if err != nil {
			continue
		}
		target := time.Date(now.Year(), now.Month(), now.Day(),
			t.Hour(), t.Minute(), t.Second(), 0, now.Location())
		if !target.After(now) {
			target = target.Add(24 * time.Hour)
		}
		return target.Sub(now), nil
	}
	t, err := dateparse.ParseIn(rest, now.Location())
	if err != nil {
		return 0, errors.Wrapf(err, "parse timer target %q", spec)
	}
	if !t.After(now) {
		return 0, errors.Errorf("target %q is in the past", spec)
	}
	return t.Sub(now), nil
}

func (m Model) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	label := "countdown"
	if m.mode == modeStopwatch {
		label = "stopwatch"
	}
	b.WriteString("  " + ui.DimStyle.Render(label) + "\n\n")

	var face time.Duration
	if m.mode == modeStopwatch {
		face = m.elapsed
	} else {
		face = m.remaining
	}
	clock := FormatClock(face)
	style := ui.TitleStyle
	switch {
	case m.done:
		style = ui.SuccessStyle
	case !m.running && m.total > 0:
		style = ui.WarnStyle
	}
	b.WriteString("  " + style.Render(clock) + "\n\n")

	if m.mode == modeCountdown && m.total > 0 {
		ratio := 1 - float64(m.remaining)/float64(m.total)
		w := width - 4
		if w > 40 {
			w = 40
		}
		if w > 0 {
			b.WriteString("  " + ui.Gauge(w, ratio, 0, 0) + "\n\n")
		}
	}

	switch {
	case m.done:
		b.WriteString("  " + ui.SuccessStyle.Render(ui.IconOK+" finished") + "\n")
	case m.running:
		b.WriteString("  " + ui.DimStyle.Render("running") + "\n")
	case m.mode == modeCountdown:
		b.WriteString("  " + m.input.View() + "\n")
		b.WriteString("\n  " + ui.DimStyle.Render("10m · 1h30m · until 17:30") + "\n")
	default:
		b.WriteString("  " + ui.DimStyle.Render("paused") + "\n")
	}
	return ui.FitHeight(b.String(), height)
}

// FormatClock renders a duration as H:MM:SS, dropping the hour field
// when zero.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	mnt := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mnt, s)
	}
	return fmt.Sprintf("%02d:%02d", mnt, s)
}
