// internal/automation/firedset.go
package automation

import (
	"github.com/fieldworks/formlogic/internal/types"
)

// FiredSet records which automations already dispatched during one
// submission session. Explicit per-session object, injected into the
// dispatcher rather than held as package state, so concurrent sessions
// (browser tabs, tests) never interfere.
//
// Not synchronized: a session has exactly one logical writer. Sessions
// must not share a FiredSet.
type FiredSet struct {
	fired map[types.AutomationID]struct{}
}

// NewFiredSet returns an empty fired-set for a fresh submission session.
func NewFiredSet() *FiredSet {
	return &FiredSet{fired: make(map[types.AutomationID]struct{})}
}

// NewFiredSetFromIDs rehydrates a fired-set persisted by a host runtime.
func NewFiredSetFromIDs(ids []types.AutomationID) *FiredSet {
	f := NewFiredSet()
	for _, id := range ids {
		f.fired[id] = struct{}{}
	}
	return f
}

// IDs returns the fired automation ids in unspecified order, for
// persistence.
func (f *FiredSet) IDs() []types.AutomationID {
	ids := make([]types.AutomationID, 0, len(f.fired))
	for id := range f.fired {
		ids = append(ids, id)
	}
	return ids
}

// Contains reports whether an automation already fired this session.
func (f *FiredSet) Contains(id types.AutomationID) bool {
	_, ok := f.fired[id]
	return ok
}

// Mark records an automation as fired. Called before the effect is handed
// to the Sender; a send failure afterwards does not unmark.
func (f *FiredSet) Mark(id types.AutomationID) {
	f.fired[id] = struct{}{}
}

// Len returns the number of fired automations.
func (f *FiredSet) Len() int {
	return len(f.fired)
}
