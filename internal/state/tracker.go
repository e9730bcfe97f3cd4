// Package state keeps the session's view of every VM consistent with the
// inspector while letting user actions show up immediately.
package state

import (
	"time"

	"quicktui/internal/inspect"
	"quicktui/internal/registry"
)

// RuntimeState is what the session currently believes about one VM.
type RuntimeState struct {
	Status inspect.Status
	Conn   *inspect.ConnectionInfo
	PIDs   []int32
	// Optimistic is set while Status reflects an action not yet confirmed by an inspection.
	Optimistic bool
	// Since is when Status last changed.
	Since time.Time
	Err   error

	pending   inspect.Status
	remaining int
}

// Tracker owns the RuntimeState of every VM. It is not safe for concurrent use;
// the session loop is its only caller.
type Tracker struct {
	window int
	now    func() time.Time
	order  []string
	states map[string]*RuntimeState
}

// NewTracker builds a Tracker that lets an optimistic status survive for at
// most window inspections that disagree with it.
func NewTracker(window int) *Tracker {
	if window <= 0 {
		window = 1
	}
	return &Tracker{
		window: window,
		now:    time.Now,
		states: map[string]*RuntimeState{},
	}
}

// Reset replaces the VM set. State of VMs that survive the refresh is kept.
func (t *Tracker) Reset(vms []registry.Descriptor) {
	next := make(map[string]*RuntimeState, len(vms))
	t.order = t.order[:0]
	for _, vm := range vms {
		st, ok := t.states[vm.ID]
		if !ok {
			st = &RuntimeState{Status: inspect.StatusUnknown, Since: t.now()}
		}
		next[vm.ID] = st
		t.order = append(t.order, vm.ID)
	}
	t.states = next
}

// Get returns a copy of the state for id.
func (t *Tracker) Get(id string) (RuntimeState, bool) {
	st, ok := t.states[id]
	if !ok {
		return RuntimeState{Status: inspect.StatusUnknown}, false
	}
	return *st, true
}

// IDs returns the tracked ids in registry order.
func (t *Tracker) IDs() []string {
	return append([]string(nil), t.order...)
}

// MarkStarting records a successful start before the inspector can see it.
func (t *Tracker) MarkStarting(id string) {
	t.markOptimistic(id, inspect.StatusStarting)
}

// MarkStopping records a successful stop request before the inspector can see it.
func (t *Tracker) MarkStopping(id string) {
	t.markOptimistic(id, inspect.StatusStopping)
}

func (t *Tracker) markOptimistic(id string, status inspect.Status) {
	st, ok := t.states[id]
	if !ok {
		return
	}
	t.set(st, status)
	st.Optimistic = true
	st.pending = status
	st.remaining = t.window
	st.Err = nil
}

// Apply folds one inspection batch into the tracked state. VMs missing from
// results are left untouched.
func (t *Tracker) Apply(results map[string]inspect.Result) {
	for id, res := range results {
		st, ok := t.states[id]
		if !ok {
			continue
		}
		t.apply(st, res)
	}
}

func (t *Tracker) apply(st *RuntimeState, res inspect.Result) {
	if res.Err != nil {
		st.Err = res.Err
		if st.Optimistic && st.remaining > 1 {
			st.remaining--
			return
		}
		st.Optimistic = false
		st.Conn = nil
		st.PIDs = nil
		t.set(st, inspect.StatusUnknown)
		return
	}
	st.Err = nil

	if st.Optimistic && !confirms(st.pending, res.Status) {
		st.remaining--
		if st.remaining > 0 {
			return
		}
	}
	st.Optimistic = false
	st.Conn = res.Conn
	st.PIDs = res.PIDs
	t.set(st, res.Status)
}

// confirms reports whether an inspected status ends an optimistic window.
// A start is confirmed by a live launcher or emulator, a stop by no process at all.
func confirms(pending, observed inspect.Status) bool {
	switch pending {
	case inspect.StatusStarting:
		return observed == inspect.StatusRunning || observed == inspect.StatusStarting
	case inspect.StatusStopping:
		return observed == inspect.StatusStopped
	default:
		return true
	}
}

func (t *Tracker) set(st *RuntimeState, status inspect.Status) {
	if st.Status != status {
		st.Since = t.now()
	}
	st.Status = status
}
