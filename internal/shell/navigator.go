package shell

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/ui"
)

// navigator is the handoff overlay. With an empty query a catalog
// shortcut key activates its entry immediately; once the user types, the
// query filters and ranks the catalog instead.
type navigator struct {
	current string
	query   string
	cursor  int
}

func newNavigator(current string) *navigator {
	return &navigator{current: current}
}

type navEntry struct {
	opt       registry.Option
	isCurrent bool
}

func (n *navigator) entries() []navEntry {
	all := registry.Options()
	q := strings.ToLower(strings.TrimSpace(n.query))
	if q == "" {
		out := make([]navEntry, len(all))
		for i, o := range all {
			out[i] = navEntry{opt: o, isCurrent: o.Kind == n.current}
		}
		return out
	}

	type scored struct {
		e    navEntry
		rank int
		dist int
		idx  int
	}
	var matches []scored
	for i, o := range all {
		name := strings.ToLower(o.Name)
		rank, dist := -1, 0
		switch {
		case strings.HasPrefix(o.Kind, q) || strings.HasPrefix(name, q):
			rank = 0
		case strings.Contains(o.Kind, q) || strings.Contains(name, q):
			rank = 1
		default:
			d := prefixDistance(q, o.Kind)
			if nd := prefixDistance(q, name); nd < d {
				d = nd
			}
			if d <= maxTypoDistance(q) {
				rank, dist = 2, d
			}
		}
		if rank < 0 {
			continue
		}
		matches = append(matches, scored{
			e:    navEntry{opt: o, isCurrent: o.Kind == n.current},
			rank: rank,
			dist: dist,
			idx:  i,
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].idx < matches[j].idx
	})
	out := make([]navEntry, len(matches))
	for i, m := range matches {
		out[i] = m.e
	}
	return out
}

// prefixDistance measures edits between q and the same-length prefix of
// s, so a typo in the first letters of a long name still matches.
func prefixDistance(q, s string) int {
	if len(s) > len(q) {
		s = s[:len(q)]
	}
	return levenshtein.ComputeDistance(q, s)
}

func maxTypoDistance(q string) int {
	d := len(q) / 2
	if d < 1 {
		d = 1
	}
	return d
}

// handleKey processes one key in the overlay. target is the chosen kind
// when the user committed; closed means the overlay should go away.
func (n *navigator) handleKey(keyName string) (target string, closed bool) {
	switch keyName {
	case "esc":
		return "", true
	case "enter":
		ents := n.entries()
		if len(ents) == 0 {
			return "", false
		}
		cur := n.clampCursor(len(ents))
		if ents[cur].isCurrent {
			// No-op target: selecting the running canvas just closes.
			return "", true
		}
		return ents[cur].opt.Kind, true
	case "up", "ctrl+p":
		if n.cursor > 0 {
			n.cursor--
		}
		return "", false
	case "down", "ctrl+n":
		if n.cursor < len(n.entries())-1 {
			n.cursor++
		}
		return "", false
	case "backspace":
		if len(n.query) > 0 {
			n.query = n.query[:len(n.query)-1]
			n.cursor = 0
		}
		return "", false
	}

	if !isGlyph(keyName) {
		return "", false
	}
	if n.query == "" {
		for _, o := range registry.Options() {
			if o.Key == keyName && o.Kind != n.current {
				return o.Kind, true
			}
		}
	}
	n.query += keyName
	n.cursor = 0
	return "", false
}

func (n *navigator) clampCursor(count int) int {
	if n.cursor >= count {
		return count - 1
	}
	if n.cursor < 0 {
		return 0
	}
	return n.cursor
}

func (n *navigator) view(width int) string {
	if width < 24 {
		width = 24
	}
	lines := []string{ui.TitleStyle.Render("Navigate"), ""}

	if n.query == "" {
		lines = append(lines, ui.MutedStyle.Render("key jumps, type to filter"))
	} else {
		lines = append(lines, ui.KeyStyle.Render("/"+n.query))
	}
	lines = append(lines, "")

	ents := n.entries()
	if len(ents) == 0 {
		lines = append(lines, ui.MutedStyle.Render("  nothing matches"))
	}
	cur := n.clampCursor(len(ents))
	for i, e := range ents {
		prefix := "  "
		label := "[" + e.opt.Key + "] " + e.opt.Icon + " " + e.opt.Name
		line := prefix + label
		switch {
		case e.isCurrent:
			line += ui.DimStyle.Render(" (current)")
		case i == cur:
			line = ui.KeyStyle.Render("> ") + ui.SelectedStyle.Render(label)
		}
		if i == cur && e.opt.Description != "" {
			line += ui.MutedStyle.Render("  " + ui.IconDot + " " + e.opt.Description)
		}
		lines = append(lines, ui.Clip(line, width))
	}

	lines = append(lines, "", ui.MutedStyle.Render("enter select "+ui.IconDot+" esc close"))
	return strings.Join(lines, "\n")
}

func isGlyph(k string) bool {
	r := []rune(k)
	if len(r) != 1 {
		return false
	}
	return unicode.IsLetter(r[0]) || unicode.IsDigit(r[0])
}
