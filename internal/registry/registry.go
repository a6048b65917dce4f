// Package registry is the build-time catalog of canvas kinds. The
// catalog never changes at runtime and navigation may only target
// entries listed here.
package registry

// Canvas kind identifiers. These are the values carried in navigate
// payloads and accepted by the run command's --canvas flag.
const (
	KindCalculator = "calculator"
	KindTimer      = "timer"
	KindClock      = "clock"
	KindFiles      = "files"
	KindSysmon     = "sysmon"
	KindDocker     = "docker"
	KindNotes      = "notes"
	KindKanban     = "kanban"
	KindPassgen    = "passgen"
	KindColors     = "colors"
)

// Option is one catalog entry as shown in the navigator overlay.
type Option struct {
	Key         string
	Name        string
	Kind        string
	Icon        string
	Description string
}

var options = []Option{
	{Key: "c", Name: "Calculator", Kind: KindCalculator, Icon: "∑", Description: "evaluate expressions, keep a tape"},
	{Key: "t", Name: "Timer", Kind: KindTimer, Icon: "◷", Description: "countdowns and a stopwatch"},
	{Key: "w", Name: "World Clock", Kind: KindClock, Icon: "◴", Description: "the hour across time zones"},
	{Key: "f", Name: "Files", Kind: KindFiles, Icon: "▤", Description: "browse a directory, pick a file"},
	{Key: "s", Name: "System Monitor", Kind: KindSysmon, Icon: "∿", Description: "load, memory and disk gauges"},
	{Key: "d", Name: "Docker", Kind: KindDocker, Icon: "◫", Description: "container list and CPU watch"},
	{Key: "n", Name: "Notes", Kind: KindNotes, Icon: "✎", Description: "scratchpad with preview"},
	{Key: "b", Name: "Kanban", Kind: KindKanban, Icon: "▦", Description: "three-column board"},
	{Key: "p", Name: "Passwords", Kind: KindPassgen, Icon: "✱", Description: "generate throwaway secrets"},
	{Key: "o", Name: "Colors", Kind: KindColors, Icon: "◉", Description: "inspect and convert colors"},
}

// Options returns the catalog in display order. The slice is a copy;
// callers cannot reach the backing array.
func Options() []Option {
	out := make([]Option, len(options))
	copy(out, options)
	return out
}

// Lookup finds the entry for a canvas kind.
func Lookup(kind string) (Option, bool) {
	for _, o := range options {
		if o.Kind == kind {
			return o, true
		}
	}
	return Option{}, false
}

// Valid reports whether kind names a catalog entry.
func Valid(kind string) bool {
	_, ok := Lookup(kind)
	return ok
}

// Kinds lists every kind identifier in display order.
func Kinds() []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Kind
	}
	return out
}
