// Package kanban is a three-column in-memory board. Cards live for the
// session only; picking one emits the selected {action:"card"} payload.
package kanban

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/shell"
	"github.com/easelterm/easel/internal/ui"
)

// CardPayload names the card the session ended on.
type CardPayload struct {
	Action string `json:"action"`
	Column string `json:"column"`
	Title  string `json:"title"`
}

var colNames = [3]string{"todo", "doing", "done"}

type Model struct {
	cols   [3][]string
	col    int
	row    int
	adding bool
	input  textinput.Model
}

func New() Model {
	ti := textinput.New()
	ti.Placeholder = "card title"
	ti.Prompt = "+ "
	ti.CharLimit = 60
	return Model{input: ti}
}

func (m Model) Kind() string  { return registry.KindKanban }
func (m Model) Title() string { return "Kanban" }

func (m Model) Bindings() []shell.KeyBinding {
	return []shell.KeyBinding{
		{Keys: []string{"h", "l"}, Action: "kanban.column", Description: "switch column", Scopes: []string{m.Kind()}},
		{Keys: []string{"j", "k"}, Action: "kanban.move", Description: "move", Scopes: []string{m.Kind()}},
		{Keys: []string{"H", "L"}, Action: "kanban.shift", Description: "shift card", Scopes: []string{m.Kind()}},
		{Keys: []string{"a"}, Action: "kanban.add", Description: "add card", Scopes: []string{m.Kind()}},
		{Keys: []string{"x"}, Action: "kanban.delete", Description: "delete card", Scopes: []string{m.Kind()}},
		{Keys: []string{"enter"}, Action: "kanban.pick", Description: "pick card", Scopes: []string{m.Kind()}},
		{Keys: []string{"q", "esc"}, Action: "kanban.quit", Description: "quit", Scopes: []string{m.Kind()}},
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (shell.Canvas, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.adding {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.adding {
		switch key.String() {
		case "esc":
			m.adding = false
			m.input.Blur()
			return m, nil
		case "enter":
			title := strings.TrimSpace(m.input.Value())
			if title != "" {
				m.cols[m.col] = append(m.cols[m.col], title)
				m.row = len(m.cols[m.col]) - 1
			}
			m.adding = false
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(key)
		return m, cmd
	}

	switch key.String() {
	case "left", "h":
		return m.focusColumn(m.col - 1), nil
	case "right", "l":
		return m.focusColumn(m.col + 1), nil
	case "down", "j":
		if m.row < len(m.cols[m.col])-1 {
			m.row++
		}
		return m, nil
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
		return m, nil
	case "H", "shift+left":
		return m.shiftCard(-1), nil
	case "L", "shift+right":
		return m.shiftCard(1), nil
	case "a":
		m.adding = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case "x":
		return m.deleteCard(), nil
	case "enter":
		if m.row >= len(m.cols[m.col]) {
			return m, nil
		}
		return m, shell.Select(CardPayload{
			Action: "card",
			Column: colNames[m.col],
			Title:  m.cols[m.col][m.row],
		})
	case "q", "esc":
		return m, shell.Cancel("user quit")
	}
	return m, nil
}

func (m Model) focusColumn(col int) Model {
	if col < 0 || col > 2 {
		return m
	}
	m.col = col
	if m.row >= len(m.cols[col]) {
		m.row = len(m.cols[col]) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
	return m
}

func (m Model) shiftCard(dir int) Model {
	target := m.col + dir
	if target < 0 || target > 2 || m.row >= len(m.cols[m.col]) {
		return m
	}
	card := m.cols[m.col][m.row]
	m.cols[m.col] = append(m.cols[m.col][:m.row], m.cols[m.col][m.row+1:]...)
	m.cols[target] = append(m.cols[target], card)
	m = m.focusColumn(target)
	m.row = len(m.cols[target]) - 1
	return m
}

func (m Model) deleteCard() Model {
	if m.row >= len(m.cols[m.col]) {
		return m
	}
	m.cols[m.col] = append(m.cols[m.col][:m.row], m.cols[m.col][m.row+1:]...)
	if m.row >= len(m.cols[m.col]) && m.row > 0 {
		m.row--
	}
	return m
}

func (m Model) View(width, height int) string {
	colWidth := (width - 8) / 3
	if colWidth < 14 {
		colWidth = 14
	}
	bodyH := height - 4
	if bodyH < 3 {
		bodyH = 3
	}

	rendered := make([]string, 3)
	for c := 0; c < 3; c++ {
		var col strings.Builder
		head := fmt.Sprintf("%s (%d)", colNames[c], len(m.cols[c]))
		if c == m.col {
			col.WriteString(ui.TitleStyle.Render(head))
		} else {
			col.WriteString(ui.MutedStyle.Render(head))
		}
		col.WriteString("\n\n")
		for r, card := range m.cols[c] {
			line := ui.Clip(ui.IconDot+" "+card, colWidth-2)
			if c == m.col && r == m.row {
				line = ui.SelectedStyle.Render(line)
			}
			col.WriteString(line + "\n")
		}
		if len(m.cols[c]) == 0 {
			col.WriteString(ui.DimStyle.Render("empty") + "\n")
		}
		rendered[c] = lipgloss.NewStyle().Width(colWidth).Height(bodyH).Render(col.String())
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, "  ", rendered[0], "  ", rendered[1], "  ", rendered[2])
	if m.adding {
		return ui.FitHeight(board+"\n  "+m.input.View(), height)
	}
	return ui.FitHeight(board, height)
}
