// Package ui holds the shared look of the suite: the palette plus the
// bar and overlay helpers every canvas renders with.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorText     lipgloss.Color = "#cdd6f4"
	ColorMuted    lipgloss.Color = "#a6adc8"
	ColorBorder   lipgloss.Color = "#585b70"
	ColorBg       lipgloss.Color = "#1e1e2e"
	ColorMantle   lipgloss.Color = "#181825"
	ColorAccent   lipgloss.Color = "#89b4fa"
	ColorSuccess  lipgloss.Color = "#a6e3a1"
	ColorWarn     lipgloss.Color = "#f9e2af"
	ColorError    lipgloss.Color = "#f38ba8"
	ColorDim      lipgloss.Color = "#7f849c"
	ColorSurface0 lipgloss.Color = "#313244"
	ColorSurface1 lipgloss.Color = "#45475a"
)

var (
	HeaderStyle    = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	HeaderBarStyle = lipgloss.NewStyle().Background(ColorMantle).Foreground(ColorText)

	StatusStyle     = lipgloss.NewStyle().Foreground(ColorSuccess).Background(ColorSurface0)
	StatusWarnStyle = lipgloss.NewStyle().Foreground(ColorWarn).Background(ColorSurface0)
	StatusErrStyle  = lipgloss.NewStyle().Foreground(ColorError).Background(ColorSurface0)
	FooterStyle     = lipgloss.NewStyle().Background(ColorMantle)

	KeyStyle      = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	HelpDescStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	TitleStyle    = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	DimStyle      = lipgloss.NewStyle().Foreground(ColorDim)
	ErrorStyle    = lipgloss.NewStyle().Foreground(ColorError)
	WarnStyle     = lipgloss.NewStyle().Foreground(ColorWarn)
	SuccessStyle  = lipgloss.NewStyle().Foreground(ColorSuccess)
	SelectedStyle = lipgloss.NewStyle().Foreground(ColorText).Background(ColorSurface1).Bold(true)

	// BoxStyle frames overlay cards before they are composed over a view.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)
)
