package notes

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/easelterm/easel/internal/shell"
)

func typeText(m Model, text string) Model {
	for _, r := range text {
		var msg tea.KeyMsg
		if r == '\n' {
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func press(m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

func esc() tea.KeyMsg      { return tea.KeyMsg{Type: tea.KeyEsc} }
func ch(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func TestTypingGoesToTextarea(t *testing.T) {
	m := typeText(New(), "hello world")
	if m.ta.Value() != "hello world" {
		t.Fatalf("value = %q", m.ta.Value())
	}
}

func TestQTypesWhileEditing(t *testing.T) {
	m := typeText(New(), "piq")
	if m.ta.Value() != "piq" {
		t.Fatalf("printable keys must be text while editing, got %q", m.ta.Value())
	}
}

func TestEscBlursThenQuits(t *testing.T) {
	m := typeText(New(), "draft")
	m, cmd := press(m, esc())
	if m.ta.Focused() {
		t.Fatal("esc should blur the textarea")
	}
	if cmd != nil {
		t.Fatalf("blur should not emit, got %v", cmd())
	}

	_, cmd = press(m, esc())
	if cmd == nil {
		t.Fatal("esc while blurred should cancel")
	}
	c, ok := cmd().(shell.CancelMsg)
	if !ok || c.Reason != "user quit" {
		t.Fatalf("got %T %+v", cmd(), cmd())
	}
}

func TestKeepEmitsSelectedWithCounts(t *testing.T) {
	m := typeText(New(), "one two\nthree")
	m, _ = press(m, esc())

	_, cmd := press(m, ch('s'))
	if cmd == nil {
		t.Fatal("expected a select cmd")
	}
	sel, ok := cmd().(shell.SelectMsg)
	if !ok {
		t.Fatalf("got %T, want shell.SelectMsg", cmd())
	}
	p, ok := sel.Payload.(NotePayload)
	if !ok {
		t.Fatalf("payload is %T", sel.Payload)
	}
	if p.Action != "note" || p.Text != "one two\nthree" || p.Words != 3 || p.Lines != 2 {
		t.Fatalf("payload = %+v", p)
	}
}

func TestKeepWithNothingWritten(t *testing.T) {
	m, _ := press(New(), esc())
	_, cmd := press(m, ch('s'))
	if cmd == nil {
		t.Fatal("expected a status cmd")
	}
	if _, ok := cmd().(shell.StatusMsg); !ok {
		t.Fatalf("got %T, want shell.StatusMsg", cmd())
	}
}

func TestPreviewTogglesWithoutCancelling(t *testing.T) {
	m := typeText(New(), "body text")
	m, _ = press(m, esc())
	m, _ = press(m, ch('p'))
	if !m.preview {
		t.Fatal("p should open the preview")
	}
	if !strings.Contains(m.View(60, 20), "body text") {
		t.Fatalf("preview view missing text:\n%s", m.View(60, 20))
	}

	m, cmd := press(m, esc())
	if m.preview {
		t.Fatal("esc should close the preview")
	}
	if cmd != nil {
		t.Fatalf("closing preview must not cancel, got %v", cmd())
	}
}

func TestRefocusAfterBlur(t *testing.T) {
	m := typeText(New(), "x")
	m, _ = press(m, esc())
	m, cmd := press(m, ch('e'))
	if !m.ta.Focused() {
		t.Fatal("e should refocus the textarea")
	}
	if cmd == nil {
		t.Fatal("refocus should restart the cursor blink")
	}
}
