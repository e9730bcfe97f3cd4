package state

import (
	"errors"
	"testing"
	"time"

	"quicktui/internal/inspect"
	"quicktui/internal/registry"
)

func descs(ids ...string) []registry.Descriptor {
	out := make([]registry.Descriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, registry.Descriptor{ID: id, DisplayName: id})
	}
	return out
}

func results(pairs map[string]inspect.Status) map[string]inspect.Result {
	out := make(map[string]inspect.Result, len(pairs))
	for id, s := range pairs {
		out[id] = inspect.Result{Status: s}
	}
	return out
}

func status(t *testing.T, tr *Tracker, id string) inspect.Status {
	t.Helper()
	st, ok := tr.Get(id)
	if !ok {
		t.Fatalf("%s not tracked", id)
	}
	return st.Status
}

func TestTrackerStartScenario(t *testing.T) {
	tr := NewTracker(5)
	tr.Reset(descs("vm-a", "vm-b"))
	tr.Apply(results(map[string]inspect.Status{"vm-a": inspect.StatusStopped, "vm-b": inspect.StatusStopped}))

	tr.MarkStarting("vm-a")
	if got := status(t, tr, "vm-a"); got != inspect.StatusStarting {
		t.Fatalf("expected optimistic starting, got %v", got)
	}

	// The launcher has not appeared yet: the optimistic state holds.
	tr.Apply(results(map[string]inspect.Status{"vm-a": inspect.StatusStopped, "vm-b": inspect.StatusStopped}))
	if st, _ := tr.Get("vm-a"); st.Status != inspect.StatusStarting || !st.Optimistic {
		t.Fatalf("expected optimistic starting to survive one stale poll, got %+v", st)
	}

	conn := &inspect.ConnectionInfo{Protocol: registry.ProtocolSpice, Host: inspect.LocalHost, Port: 5930}
	tr.Apply(map[string]inspect.Result{
		"vm-a": {Status: inspect.StatusRunning, Conn: conn, PIDs: []int32{10}},
		"vm-b": {Status: inspect.StatusStopped},
	})
	st, _ := tr.Get("vm-a")
	if st.Status != inspect.StatusRunning || st.Optimistic || st.Conn == nil {
		t.Fatalf("expected confirmed running with conn, got %+v", st)
	}
	if got := status(t, tr, "vm-b"); got != inspect.StatusStopped {
		t.Fatalf("vm-b must stay stopped, got %v", got)
	}
}

func TestTrackerOptimisticWindowExpires(t *testing.T) {
	tr := NewTracker(3)
	tr.Reset(descs("vm-a"))
	tr.MarkStopping("vm-a")

	for i := 0; i < 2; i++ {
		tr.Apply(results(map[string]inspect.Status{"vm-a": inspect.StatusRunning}))
		if got := status(t, tr, "vm-a"); got != inspect.StatusStopping {
			t.Fatalf("poll %d: expected stopping, got %v", i+1, got)
		}
	}
	tr.Apply(results(map[string]inspect.Status{"vm-a": inspect.StatusRunning}))
	st, _ := tr.Get("vm-a")
	if st.Status != inspect.StatusRunning || st.Optimistic {
		t.Fatalf("expected inspector to win after the window, got %+v", st)
	}
}

func TestTrackerStopConfirmed(t *testing.T) {
	tr := NewTracker(5)
	tr.Reset(descs("vm-a"))
	tr.Apply(results(map[string]inspect.Status{"vm-a": inspect.StatusRunning}))
	tr.MarkStopping("vm-a")
	tr.Apply(results(map[string]inspect.Status{"vm-a": inspect.StatusStopped}))
	if st, _ := tr.Get("vm-a"); st.Status != inspect.StatusStopped || st.Optimistic {
		t.Fatalf("expected confirmed stop, got %+v", st)
	}
}

func TestTrackerInspectionErrorDegradesToUnknown(t *testing.T) {
	tr := NewTracker(5)
	tr.Reset(descs("vm-a"))
	tr.Apply(results(map[string]inspect.Status{"vm-a": inspect.StatusRunning}))

	boom := &inspect.InspectionError{VM: "vm-a", Err: errors.New("denied")}
	tr.Apply(map[string]inspect.Result{"vm-a": {Status: inspect.StatusUnknown, Err: boom}})
	st, _ := tr.Get("vm-a")
	if st.Status != inspect.StatusUnknown || !errors.Is(st.Err, boom) {
		t.Fatalf("expected unknown with error, got %+v", st)
	}

	tr.Apply(results(map[string]inspect.Status{"vm-a": inspect.StatusRunning}))
	if st, _ := tr.Get("vm-a"); st.Status != inspect.StatusRunning || st.Err != nil {
		t.Fatalf("expected recovery on next good poll, got %+v", st)
	}
}

func TestTrackerResetKeepsSurvivors(t *testing.T) {
	tr := NewTracker(5)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return base }

	tr.Reset(descs("a", "b"))
	tr.Apply(results(map[string]inspect.Status{"a": inspect.StatusRunning, "b": inspect.StatusStopped}))
	tr.Reset(descs("a", "c"))

	if got := status(t, tr, "a"); got != inspect.StatusRunning {
		t.Fatalf("a should keep its state, got %v", got)
	}
	if got := status(t, tr, "c"); got != inspect.StatusUnknown {
		t.Fatalf("new vm starts unknown, got %v", got)
	}
	if _, ok := tr.Get("b"); ok {
		t.Fatal("b should be dropped")
	}
	if ids := tr.IDs(); len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Fatalf("unexpected order %v", ids)
	}
	if st, _ := tr.Get("a"); !st.Since.Equal(base) {
		t.Fatalf("expected since %v, got %v", base, st.Since)
	}
}

func TestTrackerIgnoresUnknownIDs(t *testing.T) {
	tr := NewTracker(5)
	tr.Reset(descs("a"))
	tr.MarkStarting("ghost")
	tr.Apply(results(map[string]inspect.Status{"ghost": inspect.StatusRunning}))
	if _, ok := tr.Get("ghost"); ok {
		t.Fatal("ghost must not be tracked")
	}
}
