package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// RenderOverlay centers card over base within a width x height frame and
// returns the composed view. The card arrives already boxed; rows under
// it are cell-spliced so styled base content survives on both sides.
func RenderOverlay(base, card string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	rows := frameRows(base, width, height)
	cardRows := strings.Split(card, "\n")
	cardW := widest(cardRows)
	if cardW == 0 || len(cardRows) == 0 {
		return strings.Join(rows, "\n")
	}
	x := (width - cardW) / 2
	if x < 0 {
		x = 0
	}
	y := (height - len(cardRows)) / 2
	if y < 0 {
		y = 0
	}
	for i, cr := range cardRows {
		row := y + i
		if row >= len(rows) {
			break
		}
		rows[row] = spliceRow(rows[row], cr, x, cardW, width)
	}
	return strings.Join(rows, "\n")
}

// frameRows normalizes base into exactly height rows of width cells.
func frameRows(base string, width, height int) []string {
	rows := strings.Split(base, "\n")
	if len(rows) > height {
		rows = rows[:height]
	}
	for len(rows) < height {
		rows = append(rows, "")
	}
	for i := range rows {
		rows[i] = PadRight(rows[i], width)
	}
	return rows
}

// spliceRow lays card over row starting at column x, preserving the
// styled cells on either side.
func spliceRow(row, card string, x, cardW, width int) string {
	left := ansi.Truncate(row, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	card = PadRight(card, cardW)

	cut := x + cardW
	keep := ansi.Truncate(row, cut, "")
	right := strings.TrimPrefix(row, keep)
	if gap := width - cut - ansi.StringWidth(right); gap > 0 {
		right = strings.Repeat(" ", gap) + right
	}
	return left + card + right
}

// PadRight truncates or pads s to exactly width terminal cells,
// ANSI-aware on both sides.
func PadRight(s string, width int) string {
	s = ansi.Truncate(s, width, "")
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func widest(rows []string) int {
	w := 0
	for _, r := range rows {
		if lw := ansi.StringWidth(r); lw > w {
			w = lw
		}
	}
	return w
}
