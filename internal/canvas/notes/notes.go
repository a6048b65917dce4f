// Package notes is a scratchpad: a textarea with a read-only preview
// pane. Nothing persists; the selected payload carries the text out of
// the session instead.
//
// Input modes matter here. While the textarea has focus every printable
// key is text, so the only ways out are esc (blur) and the reserved
// shell gestures, which are intercepted before the canvas sees them.
package notes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/shell"
	"github.com/easelterm/easel/internal/ui"
)

// NotePayload is the selected outcome: the note itself plus counts the
// controller can log without parsing the text.
type NotePayload struct {
	Action string `json:"action"`
	Text   string `json:"text"`
	Words  int    `json:"words"`
	Lines  int    `json:"lines"`
}

type Model struct {
	ta      textarea.Model
	vp      viewport.Model
	preview bool
	width   int
	height  int
}

func New() Model {
	ta := textarea.New()
	ta.Placeholder = "jot something"
	ta.ShowLineNumbers = false
	ta.Focus()
	return Model{ta: ta, vp: viewport.New(76, 20), width: 80, height: 24}
}

func (m Model) Kind() string  { return registry.KindNotes }
func (m Model) Title() string { return "Notes" }

func (m Model) Bindings() []shell.KeyBinding {
	return []shell.KeyBinding{
		{Keys: []string{"esc"}, Action: "notes.blur", Description: "stop editing", Scopes: []string{m.Kind()}},
		{Keys: []string{"e", "i"}, Action: "notes.edit", Description: "edit", Scopes: []string{m.Kind()}},
		{Keys: []string{"p"}, Action: "notes.preview", Description: "preview", Scopes: []string{m.Kind()}},
		{Keys: []string{"s"}, Action: "notes.keep", Description: "keep note", Scopes: []string{m.Kind()}},
		{Keys: []string{"q"}, Action: "notes.quit", Description: "quit", Scopes: []string{m.Kind()}},
	}
}

func (m Model) Init() tea.Cmd { return textarea.Blink }

func (m Model) Update(msg tea.Msg) (shell.Canvas, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ta.SetWidth(m.width - 4)
		m.ta.SetHeight(m.height - 4)
		m.vp.Width = m.width - 4
		m.vp.Height = m.height - 4
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (shell.Canvas, tea.Cmd) {
	if m.preview {
		switch msg.String() {
		case "esc", "q", "p":
			m.preview = false
			return m, nil
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}

	if m.ta.Focused() {
		if msg.String() == "esc" {
			m.ta.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.ta, cmd = m.ta.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "e", "i":
		return m, m.ta.Focus()
	case "p":
		m.preview = true
		m.vp.SetContent(m.ta.Value())
		m.vp.GotoTop()
		return m, nil
	case "s":
		text := m.ta.Value()
		if strings.TrimSpace(text) == "" {
			return m, shell.Status("nothing to keep")
		}
		return m, shell.Select(NotePayload{
			Action: "note",
			Text:   text,
			Words:  len(strings.Fields(text)),
			Lines:  strings.Count(text, "\n") + 1,
		})
	case "q", "esc":
		return m, shell.Cancel("user quit")
	}
	return m, nil
}

func (m Model) View(width, height int) string {
	if m.preview {
		head := "  " + ui.TitleStyle.Render("preview") +
			ui.DimStyle.Render("  (esc to close)")
		return ui.FitHeight(head+"\n\n"+m.vp.View(), height)
	}

	text := m.ta.Value()
	words := len(strings.Fields(text))
	state := "viewing"
	if m.ta.Focused() {
		state = "editing"
	}
	head := "  " + ui.DimStyle.Render(fmt.Sprintf("%s · %d words", state, words))
	return ui.FitHeight(head+"\n\n"+m.ta.View(), height)
}
