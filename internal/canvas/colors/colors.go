// Package colors is a color inspector: hex in, RGB/HSL/Lab out, with
// swatches and a lightness ramp. Arrow keys nudge hue and lightness,
// which makes it a decent picker for terminal themes.
package colors

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/shell"
	"github.com/easelterm/easel/internal/ui"
)

// ColorPayload is the selected outcome: one color in the formats a
// controller is likely to want.
type ColorPayload struct {
	Action string `json:"action"`
	Hex    string `json:"hex"`
	RGB    []int  `json:"rgb"`
	HSL    string `json:"hsl"`
}

type Model struct {
	input    textinput.Model
	current  colorful.Color
	valid    bool
	parseErr error
}

func New() Model {
	ti := textinput.New()
	ti.Placeholder = "#89b4fa"
	ti.Prompt = "hex "
	ti.CharLimit = 7
	ti.Focus()
	m := Model{input: ti}
	return m.set(colorful.Color{R: 0x89 / 255.0, G: 0xb4 / 255.0, B: 0xfa / 255.0})
}

func (m Model) Kind() string  { return registry.KindColors }
func (m Model) Title() string { return "Colors" }

func (m Model) Bindings() []shell.KeyBinding {
	return []shell.KeyBinding{
		{Keys: []string{"enter"}, Action: "colors.parse", Description: "parse hex", Scopes: []string{m.Kind()}},
		{Keys: []string{"←", "→", "↑", "↓"}, Action: "colors.nudge", Description: "hue/lightness", Scopes: []string{m.Kind()}},
		{Keys: []string{"r"}, Action: "colors.random", Description: "random", Scopes: []string{m.Kind()}},
		{Keys: []string{"ctrl+s"}, Action: "colors.keep", Description: "keep color", Scopes: []string{m.Kind()}},
		{Keys: []string{"esc"}, Action: "colors.quit", Description: "quit", Scopes: []string{m.Kind()}},
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) set(c colorful.Color) Model {
	m.current = c.Clamped()
	m.valid = true
	m.parseErr = nil
	m.input.SetValue(m.current.Hex())
	return m
}

func (m Model) Update(msg tea.Msg) (shell.Canvas, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "esc":
		return m, shell.Cancel("user quit")
	case "ctrl+s":
		if !m.valid {
			return m, shell.Status("no color parsed yet")
		}
		r, g, b := m.current.RGB255()
		h, s, l := m.current.Hsl()
		return m, shell.Select(ColorPayload{
			Action: "color",
			Hex:    m.current.Hex(),
			RGB:    []int{int(r), int(g), int(b)},
			HSL:    fmt.Sprintf("%.0f,%.2f,%.2f", h, s, l),
		})
	case "enter":
		return m.parse(), nil
	case "left", "right":
		return m.nudgeHue(key.String() == "right"), nil
	case "up", "down":
		return m.nudgeLight(key.String() == "up"), nil
	}

	// Hotkeys only while the field is empty; q and r are hex-adjacent
	// typing otherwise.
	if m.input.Value() == "" {
		switch key.String() {
		case "q":
			return m, shell.Cancel("user quit")
		case "r":
			return m.set(colorful.HappyColor()), nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m Model) parse() Model {
	raw := strings.TrimSpace(strings.ToLower(m.input.Value()))
	if raw == "" {
		return m
	}
	if !strings.HasPrefix(raw, "#") {
		raw = "#" + raw
	}
	c, err := colorful.Hex(raw)
	if err != nil {
		m.valid = false
		m.parseErr = err
		return m
	}
	return m.set(c)
}

func (m Model) nudgeHue(up bool) Model {
	if !m.valid {
		return m
	}
	h, s, l := m.current.Hsl()
	if up {
		h += 5
	} else {
		h -= 5
	}
	for h < 0 {
		h += 360
	}
	for h >= 360 {
		h -= 360
	}
	return m.set(colorful.Hsl(h, s, l))
}

func (m Model) nudgeLight(up bool) Model {
	if !m.valid {
		return m
	}
	h, s, l := m.current.Hsl()
	if up {
		l += 0.02
	} else {
		l -= 0.02
	}
	if l < 0 {
		l = 0
	}
	if l > 1 {
		l = 1
	}
	return m.set(colorful.Hsl(h, s, l))
}

func swatch(c colorful.Color, width int) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(c.Hex())).
		Render(strings.Repeat(" ", width))
}

func (m Model) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n  " + m.input.View() + "\n\n")

	if m.parseErr != nil {
		b.WriteString("  " + ui.ErrorStyle.Render(m.parseErr.Error()) + "\n")
		return ui.FitHeight(b.String(), height)
	}
	if !m.valid {
		return ui.FitHeight(b.String(), height)
	}

	c := m.current
	r, g, bl := c.RGB255()
	h, s, l := c.Hsl()
	lab, laa, lbb := c.Lab()

	b.WriteString("  " + swatch(c, 24) + "\n\n")
	b.WriteString(fmt.Sprintf("  %s %s\n", ui.MutedStyle.Render("hex"), ui.TitleStyle.Render(c.Hex())))
	b.WriteString(fmt.Sprintf("  %s %d, %d, %d\n", ui.MutedStyle.Render("rgb"), r, g, bl))
	b.WriteString(fmt.Sprintf("  %s %.0f°, %.0f%%, %.0f%%\n", ui.MutedStyle.Render("hsl"), h, s*100, l*100))
	b.WriteString(fmt.Sprintf("  %s %.2f, %.2f, %.2f\n", ui.MutedStyle.Render("lab"), lab, laa, lbb))

	b.WriteString("\n  ")
	for i := 1; i <= 7; i++ {
		shade := colorful.Hsl(h, s, float64(i)/8)
		b.WriteString(swatch(shade, 4))
	}
	b.WriteString("\n")
	return ui.FitHeight(b.String(), height)
}
