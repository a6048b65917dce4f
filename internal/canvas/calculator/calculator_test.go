package calculator

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/easelterm/easel/internal/shell"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeExpr(m Model, expr string) Model {
	for _, r := range expr {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func TestEvaluateAppendsTape(t *testing.T) {
	m := typeExpr(New(), "2*(3+4)")
	next, _ := m.Update(key("enter"))
	m = next.(Model)

	if len(m.tape) != 1 {
		t.Fatalf("tape length = %d, want 1", len(m.tape))
	}
	if m.tape[0].result != "14" || m.tape[0].failed {
		t.Fatalf("entry = %+v, want result 14", m.tape[0])
	}
	if m.lastVal != "14" {
		t.Fatalf("lastVal = %q, want 14", m.lastVal)
	}
	if m.input.Value() != "" {
		t.Fatalf("input not cleared after eval: %q", m.input.Value())
	}
}

func TestMathBuiltinsAvailable(t *testing.T) {
	m := typeExpr(New(), "Math.max(3,9)")
	next, _ := m.Update(key("enter"))
	m = next.(Model)

	if m.lastVal != "9" {
		t.Fatalf("lastVal = %q, want 9", m.lastVal)
	}
}

func TestBadExpressionKeepsLastResult(t *testing.T) {
	m := typeExpr(New(), "6*7")
	next, _ := m.Update(key("enter"))
	m = next.(Model)

	m = typeExpr(m, "6*")
	next, _ = m.Update(key("enter"))
	m = next.(Model)

	if len(m.tape) != 2 {
		t.Fatalf("tape length = %d, want 2", len(m.tape))
	}
	if !m.tape[1].failed {
		t.Fatalf("second entry should be marked failed: %+v", m.tape[1])
	}
	if m.lastVal != "42" {
		t.Fatalf("lastVal = %q, want the prior 42", m.lastVal)
	}
}

func TestKeepResultEmitsSelected(t *testing.T) {
	m := New()

	_, cmd := m.Update(key("ctrl+s"))
	if cmd == nil {
		t.Fatal("expected a status cmd when there is no result")
	}
	if _, ok := cmd().(shell.StatusMsg); !ok {
		t.Fatalf("got %T, want shell.StatusMsg", cmd())
	}

	m = typeExpr(m, "2*(3+4)")
	next, _ := m.Update(key("enter"))
	m = next.(Model)

	_, cmd = m.Update(key("ctrl+s"))
	if cmd == nil {
		t.Fatal("expected a select cmd")
	}
	sel, ok := cmd().(shell.SelectMsg)
	if !ok {
		t.Fatalf("got %T, want shell.SelectMsg", cmd())
	}
	p, ok := sel.Payload.(ResultPayload)
	if !ok {
		t.Fatalf("payload is %T, want ResultPayload", sel.Payload)
	}
	if p.Action != "result" || p.Expression != "2*(3+4)" || p.Value != "14" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestEscapeCancels(t *testing.T) {
	m := typeExpr(New(), "1+1")
	_, cmd := m.Update(key("esc"))
	if cmd == nil {
		t.Fatal("expected a cancel cmd")
	}
	c, ok := cmd().(shell.CancelMsg)
	if !ok {
		t.Fatalf("got %T, want shell.CancelMsg", cmd())
	}
	if c.Reason != "user quit" {
		t.Fatalf("reason = %q", c.Reason)
	}
}

func TestViewShowsTapeAndInput(t *testing.T) {
	m := typeExpr(New(), "6*7")
	next, _ := m.Update(key("enter"))
	m = next.(Model)

	v := m.View(60, 10)
	if !strings.Contains(v, "6*7") || !strings.Contains(v, "42") {
		t.Fatalf("view missing tape entry:\n%s", v)
	}
}
