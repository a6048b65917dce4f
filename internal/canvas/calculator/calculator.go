// Package calculator is an expression evaluator with a result tape.
// Expressions run through an embedded JavaScript runtime, so Math.*
// helpers work out of the box.
package calculator

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dop251/goja"

	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/shell"
	"github.com/easelterm/easel/internal/ui"
)

// ResultPayload is the selected outcome: the expression the user kept.
type ResultPayload struct {
	Action     string `json:"action"`
	Expression string `json:"expression"`
	Value      string `json:"value"`
}

type entry struct {
	expr   string
	result string
	failed bool
}

type Model struct {
	vm       *goja.Runtime
	input    textinput.Model
	tape     []entry
	lastExpr string
	lastVal  string
}

func New() Model {
	ti := textinput.New()
	ti.Placeholder = "2*(3+4)"
	ti.Prompt = "= "
	ti.Focus()
	return Model{vm: goja.New(), input: ti}
}

func (m Model) Kind() string  { return registry.KindCalculator }
func (m Model) Title() string { return "Calculator" }

func (m Model) Bindings() []shell.KeyBinding {
	return []shell.KeyBinding{
		{Keys: []string{"enter"}, Action: "calc.eval", Description: "evaluate", Scopes: []string{m.Kind()}},
		{Keys: []string{"ctrl+s"}, Action: "calc.keep", Description: "keep result", Scopes: []string{m.Kind()}},
		{Keys: []string{"esc"}, Action: "calc.quit", Description: "quit", Scopes: []string{m.Kind()}},
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (shell.Canvas, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			return m.evaluate(), nil
		case "ctrl+s":
			if m.lastVal == "" {
				return m, shell.Status("nothing to keep yet")
			}
			return m, shell.Select(ResultPayload{
				Action:     "result",
				Expression: m.lastExpr,
				Value:      m.lastVal,
			})
		case "esc":
			return m, shell.Cancel("user quit")
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) evaluate() Model {
	expr := strings.TrimSpace(m.input.Value())
	if expr == "" {
		return m
	}
	e := entry{expr: expr}
	v, err := m.vm.RunString(expr)
	if err != nil {
		e.failed = true
		e.result = shortError(err)
	} else {
		e.result = v.String()
		m.lastExpr = expr
		m.lastVal = e.result
	}
	m.tape = append(m.tape, e)
	m.input.SetValue("")
	return m
}

func (m Model) View(width, height int) string {
	rows := height - 2
	if rows < 0 {
		rows = 0
	}
	tape := m.tape
	if len(tape) > rows {
		tape = tape[len(tape)-rows:]
	}
	var b strings.Builder
	for i := 0; i < rows-len(tape); i++ {
		b.WriteString("\n")
	}
	for _, e := range tape {
		line := ui.MutedStyle.Render(e.expr) + "  " + ui.IconArrow + " "
		if e.failed {
			line += ui.ErrorStyle.Render(e.result)
		} else {
			line += ui.TitleStyle.Render(e.result)
		}
		b.WriteString(ui.Clip(line, width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

func shortError(err error) string {
	s := err.Error()
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
