package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// RenderBar paints one full-width chrome line in the given style.
func RenderBar(style lipgloss.Style, width int, text string) string {
	if width <= 0 {
		return ""
	}
	line := strings.ReplaceAll(text, "\n", " ")
	line = PadRight(line, width)
	return style.Width(width).MaxWidth(width).Render(line)
}

// FitHeight pads or clips s to exactly height lines.
func FitHeight(s string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// Gauge renders a fixed-width meter, filled to ratio, colored by the
// warn and crit thresholds.
func Gauge(width int, ratio, warn, crit float64) string {
	if width < 2 {
		width = 2
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio*float64(width) + 0.5)
	style := SuccessStyle
	switch {
	case crit > 0 && ratio >= crit:
		style = ErrorStyle
	case warn > 0 && ratio >= warn:
		style = WarnStyle
	}
	bar := style.Render(strings.Repeat("█", filled))
	rest := DimStyle.Render(strings.Repeat("░", width-filled))
	return bar + rest
}

// Clip truncates s to width cells without padding.
func Clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "")
}

// Width reports the terminal cell width of s, ANSI-aware.
func Width(s string) int {
	return ansi.StringWidth(s)
}
