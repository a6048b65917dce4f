package session

import (
	"sort"
	"strings"
	"sync"
)

// AlertGate tracks which alert conditions are currently raised so that a
// sustained breach produces one alert, not one per poll tick. Clearing a
// condition re-arms it: a later re-breach alerts again.
type AlertGate struct {
	mu     sync.Mutex
	raised map[string]struct{}
}

// Raise marks the condition and reports whether it was newly raised.
func (g *AlertGate) Raise(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.raised == nil {
		g.raised = make(map[string]struct{})
	}
	if _, ok := g.raised[id]; ok {
		return false
	}
	g.raised[id] = struct{}{}
	return true
}

// Clear re-arms the condition and reports whether it had been raised.
func (g *AlertGate) Clear(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.raised[id]
	delete(g.raised, id)
	return ok
}

// ClearPrefix re-arms every condition whose id starts with prefix and
// returns how many were cleared. Used when a monitored subject disappears
// and its namespaced conditions should not stay latched.
func (g *AlertGate) ClearPrefix(prefix string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for id := range g.raised {
		if strings.HasPrefix(id, prefix) {
			delete(g.raised, id)
			n++
		}
	}
	return n
}

// Active returns the raised condition ids in sorted order.
func (g *AlertGate) Active() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.raised))
	for id := range g.raised {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
