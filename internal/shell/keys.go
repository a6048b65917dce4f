package shell

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Actions resolved through the key registry. Reserved actions belong to
// the shell; canvases namespace theirs by kind ("notes.save").
const (
	ActionQuit      = "quit"
	ActionNavigator = "navigator"
	ActionHelp      = "help"
)

// KeyBinding maps keys to an action within the scopes it is active in.
// An empty scope list means everywhere; "*" inside the list means the
// same thing.
type KeyBinding struct {
	Keys        []string
	Action      string
	Description string
	Scopes      []string
}

// KeyRegistry answers "does this key mean this action here". The shell
// seeds it with the reserved bindings and appends whatever the canvas
// declares.
type KeyRegistry struct {
	bindings []KeyBinding
}

func NewKeyRegistry(groups ...[]KeyBinding) *KeyRegistry {
	r := &KeyRegistry{}
	for _, g := range groups {
		r.bindings = append(r.bindings, slices.Clone(g)...)
	}
	return r
}

func (r *KeyRegistry) Register(b KeyBinding) {
	r.bindings = append(r.bindings, b)
}

// ForScope returns the bindings active in scope, in registration order.
func (r *KeyRegistry) ForScope(scope string) []KeyBinding {
	out := make([]KeyBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		if scopeMatch(scope, b.Scopes) {
			out = append(out, b)
		}
	}
	return out
}

// Matches reports whether the pressed key triggers action in scope.
func (r *KeyRegistry) Matches(msg tea.KeyMsg, action, scope string) bool {
	pressed := normalizeKey(msg.String())
	for _, b := range r.bindings {
		if b.Action != action || !scopeMatch(scope, b.Scopes) {
			continue
		}
		for _, k := range b.Keys {
			if normalizeKey(k) == pressed {
				return true
			}
		}
	}
	return false
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func scopeMatch(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}

// ReservedBindings are the gestures every canvas honors before its own
// input handling. Canvases must not rebind these keys.
func ReservedBindings() []KeyBinding {
	return []KeyBinding{
		{Keys: []string{"ctrl+g"}, Action: ActionNavigator, Description: "navigate", Scopes: []string{"*"}},
		{Keys: []string{"f1"}, Action: ActionHelp, Description: "help", Scopes: []string{"*"}},
		{Keys: []string{"ctrl+c"}, Action: ActionQuit, Description: "cancel", Scopes: []string{"*"}},
	}
}
