// Package clock is a world clock over the configured zone list. It is
// the purest ticker canvas: no input beyond a format toggle, one tick
// cmd re-armed per second.
package clock

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/easelterm/easel/internal/config"
	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/shell"
	"github.com/easelterm/easel/internal/ui"
)

type tickMsg time.Time

type zoneEntry struct {
	name string
	loc  *time.Location
	err  error
}

type Model struct {
	zones      []zoneEntry
	now        time.Time
	twelveHour bool
}

func New(cfg config.ClockConfig) Model {
	zones := make([]zoneEntry, 0, len(cfg.Zones))
	for _, name := range cfg.Zones {
		z := zoneEntry{name: name}
		if name == "Local" {
			z.loc = time.Local
		} else {
			z.loc, z.err = time.LoadLocation(name)
		}
		zones = append(zones, z)
	}
	return Model{zones: zones, now: time.Now()}
}

func (m Model) Kind() string  { return registry.KindClock }
func (m Model) Title() string { return "World Clock" }

func (m Model) Bindings() []shell.KeyBinding {
	return []shell.KeyBinding{
		{Keys: []string{"u"}, Action: "clock.format", Description: "12/24h", Scopes: []string{m.Kind()}},
		{Keys: []string{"q", "esc"}, Action: "clock.quit", Description: "quit", Scopes: []string{m.Kind()}},
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (shell.Canvas, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "u":
			m.twelveHour = !m.twelveHour
			return m, nil
		case "q", "esc":
			return m, shell.Cancel("user quit")
		}
	}
	return m, nil
}

func (m Model) View(width, height int) string {
	layout := "15:04:05"
	if m.twelveHour {
		layout = "03:04:05 PM"
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, z := range m.zones {
		if z.err != nil {
			line := fmt.Sprintf("  %-20s %s", z.name, ui.ErrorStyle.Render("unknown zone"))
			b.WriteString(ui.Clip(line, width) + "\n")
			continue
		}
		t := m.now.In(z.loc)
		name := z.name
		style := ui.MutedStyle
		if z.loc == time.Local {
			style = ui.TitleStyle
		}
		line := fmt.Sprintf("  %s %s  %s",
			style.Render(fmt.Sprintf("%-20s", name)),
			ui.SelectedStyle.Render(" "+t.Format(layout)+" "),
			ui.DimStyle.Render(t.Format("Mon Jan 02")))
		b.WriteString(ui.Clip(line, width) + "\n")
	}
	return ui.FitHeight(b.String(), height)
}
