// Package passgen generates password candidates from crypto/rand and
// lets the user pick one. The selected payload carries the secret; the
// canvas keeps nothing.
package passgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/easelterm/easel/internal/config"
	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/shell"
	"github.com/easelterm/easel/internal/ui"
)

// SecretPayload carries the chosen password out of the session.
type SecretPayload struct {
	Action string `json:"action"`
	Value  string `json:"value"`
	Length int    `json:"length"`
}

const (
	lowerSet  = "abcdefghijklmnopqrstuvwxyz"
	upperSet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitSet  = "0123456789"
	symbolSet = "!@#$%^&*-_=+?"

	minLength = 4
	maxLength = 64
)

type Model struct {
	count   int
	length  int
	upper   bool
	digits  bool
	symbols bool
	batch   []string
	cursor  int
	err     error
}

func New(cfg config.PassgenConfig) Model {
	m := Model{
		count:  cfg.Count,
		length: cfg.Length,
		upper:  true,
		digits: true,
	}
	if m.count < 1 {
		m.count = 8
	}
	if m.length < minLength {
		m.length = minLength
	}
	if m.length > maxLength {
		m.length = maxLength
	}
	return m.regenerate()
}

func (m Model) Kind() string  { return registry.KindPassgen }
func (m Model) Title() string { return "Passwords" }

func (m Model) Bindings() []shell.KeyBinding {
	return []shell.KeyBinding{
		{Keys: []string{"n"}, Action: "passgen.new", Description: "new batch", Scopes: []string{m.Kind()}},
		{Keys: []string{"+", "-"}, Action: "passgen.length", Description: "length", Scopes: []string{m.Kind()}},
		{Keys: []string{"u", "d", "s"}, Action: "passgen.classes", Description: "toggle classes", Scopes: []string{m.Kind()}},
		{Keys: []string{"enter"}, Action: "passgen.pick", Description: "pick", Scopes: []string{m.Kind()}},
		{Keys: []string{"q", "esc"}, Action: "passgen.quit", Description: "quit", Scopes: []string{m.Kind()}},
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (shell.Canvas, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "down", "j":
		if m.cursor < len(m.batch)-1 {
			m.cursor++
		}
		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "n":
		return m.regenerate(), nil
	case "+", "=":
		if m.length < maxLength {
			m.length++
		}
		return m.regenerate(), nil
	case "-":
		if m.length > minLength {
			m.length--
		}
		return m.regenerate(), nil
	case "u":
		m.upper = !m.upper
		return m.regenerate(), nil
	case "d":
		m.digits = !m.digits
		return m.regenerate(), nil
	case "s":
		m.symbols = !m.symbols
		return m.regenerate(), nil
	case "enter":
		if m.cursor >= len(m.batch) {
			return m, nil
		}
		return m, shell.Select(SecretPayload{
			Action: "password",
			Value:  m.batch[m.cursor],
			Length: m.length,
		})
	case "q", "esc":
		return m, shell.Cancel("user quit")
	}
	return m, nil
}

func (m Model) alphabet() string {
	a := lowerSet
	if m.upper {
		a += upperSet
	}
	if m.digits {
		a += digitSet
	}
	if m.symbols {
		a += symbolSet
	}
	return a
}

func (m Model) regenerate() Model {
	batch := make([]string, 0, m.count)
	for i := 0; i < m.count; i++ {
		p, err := generate(m.alphabet(), m.length)
		if err != nil {
			m.err = err
			return m
		}
		batch = append(batch, p)
	}
	m.err = nil
	m.batch = batch
	if m.cursor >= len(batch) {
		m.cursor = 0
	}
	return m
}

func generate(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "read random")
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

func (m Model) View(width, height int) string {
	flag := func(on bool, label string) string {
		if on {
			return ui.SuccessStyle.Render("[x] " + label)
		}
		return ui.DimStyle.Render("[ ] " + label)
	}
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  length %s   %s  %s  %s\n\n",
		ui.TitleStyle.Render(fmt.Sprintf("%d", m.length)),
		flag(m.upper, "upper"), flag(m.digits, "digits"), flag(m.symbols, "symbols")))

	if m.err != nil {
		b.WriteString("  " + ui.ErrorStyle.Render(m.err.Error()) + "\n")
		return ui.FitHeight(b.String(), height)
	}
	for i, p := range m.batch {
		line := "  " + p
		if i == m.cursor {
			line = ui.SelectedStyle.Render(line)
		}
		b.WriteString(ui.Clip(line, width) + "\n")
	}
	return ui.FitHeight(b.String(), height)
}
