// Package balance owns the in-memory diamond balance.
//
// The balance is server-authoritative: it is only ever overwritten with
// values the backend reported, never incremented or decremented locally.
// Updates arrive from several independent async operations with no ordering
// guarantee; the last applied value wins.
package balance

import (
	"strconv"
	"strings"

	"github.com/redvelvet/companion/internal/logging"
)

var log = logging.Get()

// Manager is the single source of truth for the diamond count. All mutation
// funnels through Apply/ApplyFromField; everything else reads.
type Manager struct {
	value     int
	listeners []func(int)
}

// NewManager returns a Manager seeded with the pre-sync default.
func NewManager(initial int) *Manager {
	return &Manager{value: initial}
}

// Current returns the most recently applied value.
func (m *Manager) Current() int {
	return m.value
}

// Apply overwrites the balance with a server-provided value and notifies
// listeners.
func (m *Manager) Apply(v int) {
	m.value = v
	log.Debug("Balance applied: %d", v)
	for _, fn := range m.listeners {
		fn(v)
	}
}

// ApplyFromField parses a raw balance field and applies it. Non-numeric
// input leaves the state unchanged and returns false; it never panics.
func (m *Manager) ApplyFromField(raw string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Error("Balance field did not parse: %q", raw)
		return false
	}
	m.Apply(n)
	return true
}

// Listen registers a callback invoked after every applied update. Callbacks
// run on the caller of Apply, which is always the UI-affinity loop.
func (m *Manager) Listen(fn func(int)) {
	m.listeners = append(m.listeners, fn)
}
