package colors

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/easelterm/easel/internal/shell"
)

func press(m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

func ch(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func setHex(m Model, hex string) Model {
	m.input.SetValue("")
	for _, r := range hex {
		m, _ = press(m, ch(r))
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	return m
}

func TestParseHex(t *testing.T) {
	m := setHex(New(), "#ff0000")
	if !m.valid {
		t.Fatalf("parse failed: %v", m.parseErr)
	}
	r, g, b := m.current.RGB255()
	if r != 255 || g != 0 || b != 0 {
		t.Fatalf("rgb = %d,%d,%d", r, g, b)
	}
}

func TestParseAddsMissingHash(t *testing.T) {
	m := setHex(New(), "00ff00")
	if !m.valid {
		t.Fatalf("parse failed: %v", m.parseErr)
	}
	if m.current.Hex() != "#00ff00" {
		t.Fatalf("hex = %q", m.current.Hex())
	}
}

func TestParseErrorShownInline(t *testing.T) {
	m := setHex(New(), "#zzzzzz")
	if m.valid {
		t.Fatal("bogus hex should not parse")
	}
	if m.parseErr == nil {
		t.Fatal("parse error should be recorded")
	}
	if !strings.Contains(m.View(60, 20), m.parseErr.Error()) {
		t.Fatal("view should show the parse error")
	}
}

func TestHueNudgeWraps(t *testing.T) {
	m := setHex(New(), "#ff0000") // hue 0
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	h, _, _ := m.current.Hsl()
	if h < 350 || h >= 360 {
		t.Fatalf("hue = %v, want wrap into [350,360)", h)
	}
}

func TestLightnessClamp(t *testing.T) {
	m := setHex(New(), "#ffffff")
	for i := 0; i < 5; i++ {
		m, _ = press(m, tea.KeyMsg{Type: tea.KeyUp})
	}
	_, _, l := m.current.Hsl()
	if l != 1 {
		t.Fatalf("lightness = %v, want clamp at 1", l)
	}
}

func TestKeepEmitsColorPayload(t *testing.T) {
	m := setHex(New(), "#336699")
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("expected a select cmd")
	}
	sel, ok := cmd().(shell.SelectMsg)
	if !ok {
		t.Fatalf("got %T, want shell.SelectMsg", cmd())
	}
	p, ok := sel.Payload.(ColorPayload)
	if !ok {
		t.Fatalf("payload is %T", sel.Payload)
	}
	if p.Action != "color" || p.Hex != "#336699" {
		t.Fatalf("payload = %+v", p)
	}
	if len(p.RGB) != 3 || p.RGB[0] != 0x33 || p.RGB[1] != 0x66 || p.RGB[2] != 0x99 {
		t.Fatalf("rgb = %v", p.RGB)
	}
}

func TestRandomOnlyOnEmptyField(t *testing.T) {
	m := New()
	m.input.SetValue("")
	m, _ = press(m, ch('r'))
	if !m.valid {
		t.Fatal("random color should be valid")
	}
	if m.input.Value() == "" {
		t.Fatal("random should write its hex into the field")
	}

	before := m.current.Hex()
	m.input.SetValue("#33")
	m, _ = press(m, ch('r')) // field holds text now, r must type
	if m.current.Hex() != before {
		t.Fatal("r with text in the field must not replace the color")
	}
	if m.input.Value() != "#33r" {
		t.Fatalf("input = %q, want #33r", m.input.Value())
	}
}

func TestEscCancels(t *testing.T) {
	_, cmd := press(New(), tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected cancel")
	}
	if _, ok := cmd().(shell.CancelMsg); !ok {
		t.Fatalf("got %T, want shell.CancelMsg", cmd())
	}
}
