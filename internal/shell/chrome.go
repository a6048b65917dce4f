package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/ui"
)

func (m Model) View() string {
	if m.terminalDone || m.closing {
		return ""
	}
	header := m.renderHeader()
	status := m.renderStatus()
	footer := m.renderFooter()

	bodyH := m.height - 3
	if bodyH < 0 {
		bodyH = 0
	}
	body := ""
	if bodyH > 0 {
		body = m.canvas.View(max(1, m.width), bodyH)
		switch m.modal {
		case ModalNavigator:
			card := ui.BoxStyle.Render(m.nav.view(max(24, m.width-16)))
			body = ui.RenderOverlay(body, card, m.width, bodyH)
		case ModalHelp:
			card := ui.BoxStyle.Render(m.renderHelp())
			body = ui.RenderOverlay(body, card, m.width, bodyH)
		}
		body = ui.FitHeight(body, bodyH)
	}
	view := strings.Join([]string{header, status, body, footer}, "\n")
	return ui.FitHeight(view, max(1, m.height))
}

func (m Model) renderHeader() string {
	title := m.canvas.Title()
	if opt, ok := registry.Lookup(m.canvas.Kind()); ok {
		title = opt.Icon + " " + title
	}
	left := ui.HeaderStyle.Render("easel") + ui.HeaderBarStyle.Render(" "+title)

	link := ui.SuccessStyle.Render(ui.IconRunning)
	if m.sess.Lost() {
		link = ui.ErrorStyle.Render(ui.IconFail)
	}
	right := ui.DimStyle.Render(m.sess.Scenario()) + " " + link

	w := max(1, m.width)
	leftW := ansi.StringWidth(left)
	rightW := ansi.StringWidth(right)
	gap := 1
	if leftW+rightW+1 < w {
		gap = w - leftW - rightW
	}
	return ui.RenderBar(ui.HeaderBarStyle, w, left+strings.Repeat(" ", gap)+right)
}

func (m Model) renderStatus() string {
	msg := strings.TrimSpace(m.status)
	if msg == "" {
		msg = "ready"
	}
	style := ui.StatusStyle
	if m.statusErr {
		style = ui.StatusErrStyle
	}
	return ui.RenderBar(style, max(1, m.width), " "+msg)
}

func (m Model) renderFooter() string {
	bg := ui.ColorMantle
	keyStyle := lipgloss.NewStyle().Foreground(ui.ColorAccent).Bold(true).Background(bg)
	descStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted).Background(bg)
	space := lipgloss.NewStyle().Background(bg).Render(" ")
	sep := lipgloss.NewStyle().Background(bg).Render("  ")

	bindings := m.keys.ForScope(m.scope())
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if len(b.Keys) == 0 || b.Description == "" {
			continue
		}
		kb := key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Description))
		h := kb.Help()
		parts = append(parts, keyStyle.Render(h.Key)+space+descStyle.Render(h.Desc))
	}
	line := strings.Join(parts, sep)
	return ui.RenderBar(ui.FooterStyle, max(1, m.width), line)
}

func (m Model) renderHelp() string {
	lines := []string{ui.TitleStyle.Render("Keys"), ""}
	for _, b := range m.keys.ForScope(m.canvas.Kind()) {
		if b.Description == "" || len(b.Keys) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s  %s",
			ui.KeyStyle.Render(fmt.Sprintf("%12s", strings.Join(b.Keys, " / "))),
			ui.HelpDescStyle.Render(b.Description)))
	}
	lines = append(lines, "", ui.MutedStyle.Render("esc close"))
	return strings.Join(lines, "\n")
}
