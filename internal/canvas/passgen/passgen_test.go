package passgen

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/easelterm/easel/internal/config"
	"github.com/easelterm/easel/internal/shell"
)

var testCfg = config.PassgenConfig{Length: 16, Count: 4}

func press(m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

func ch(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func TestBatchShape(t *testing.T) {
	m := New(testCfg)
	if len(m.batch) != 4 {
		t.Fatalf("batch = %d candidates, want 4", len(m.batch))
	}
	for _, p := range m.batch {
		if len(p) != 16 {
			t.Fatalf("candidate %q has length %d, want 16", p, len(p))
		}
	}
}

func TestAlphabetRespectsClasses(t *testing.T) {
	m := New(testCfg)
	m, _ = press(m, ch('u')) // drop upper
	m, _ = press(m, ch('d')) // drop digits
	allowed := lowerSet
	for _, p := range m.batch {
		for _, r := range p {
			if !strings.ContainsRune(allowed, r) {
				t.Fatalf("candidate %q contains %q outside %q", p, r, allowed)
			}
		}
	}

	m, _ = press(m, ch('s')) // add symbols
	if !strings.Contains(m.alphabet(), "!") {
		t.Fatal("symbols should be in the alphabet")
	}
}

func TestLengthAdjustRegenerates(t *testing.T) {
	m := New(testCfg)
	m, _ = press(m, ch('+'))
	for _, p := range m.batch {
		if len(p) != 17 {
			t.Fatalf("candidate %q has length %d after +, want 17", p, len(p))
		}
	}
	m, _ = press(m, ch('-'))
	m, _ = press(m, ch('-'))
	for _, p := range m.batch {
		if len(p) != 15 {
			t.Fatalf("candidate %q has length %d after --, want 15", p, len(p))
		}
	}
}

func TestLengthClamps(t *testing.T) {
	m := New(config.PassgenConfig{Length: 1, Count: 1})
	if m.length != minLength {
		t.Fatalf("length = %d, want clamp to %d", m.length, minLength)
	}
}

func TestNewBatchChangesCandidates(t *testing.T) {
	m := New(testCfg)
	before := strings.Join(m.batch, "\n")
	m, _ = press(m, ch('n'))
	if strings.Join(m.batch, "\n") == before {
		t.Fatal("regenerated batch should differ")
	}
}

func TestPickCarriesSecret(t *testing.T) {
	m := New(testCfg)
	m, _ = press(m, ch('j'))
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a select cmd")
	}
	sel, ok := cmd().(shell.SelectMsg)
	if !ok {
		t.Fatalf("got %T, want shell.SelectMsg", cmd())
	}
	p, ok := sel.Payload.(SecretPayload)
	if !ok {
		t.Fatalf("payload is %T", sel.Payload)
	}
	if p.Action != "password" || p.Value != m.batch[1] || p.Length != 16 {
		t.Fatalf("payload = %+v (batch %v)", p, m.batch)
	}
}

func TestQuitCancels(t *testing.T) {
	_, cmd := press(New(testCfg), tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected cancel")
	}
	if _, ok := cmd().(shell.CancelMsg); !ok {
		t.Fatalf("got %T, want shell.CancelMsg", cmd())
	}
}
