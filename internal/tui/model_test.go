package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"quicktui/internal/app"
	"quicktui/internal/inspect"
	"quicktui/internal/lifecycle"
	"quicktui/internal/registry"
)

type call struct {
	op string
	id string
}

type fakeController struct {
	mu       sync.Mutex
	vms      []registry.Descriptor
	discover error
	results  map[string]inspect.Result
	err      map[string]error
	calls    []call
}

func (f *fakeController) record(op, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op, id})
	return f.err[op]
}

func (f *fakeController) Discover() ([]registry.Descriptor, error) {
	return f.vms, f.discover
}

func (f *fakeController) InspectAll(context.Context, []registry.Descriptor) (map[string]inspect.Result, error) {
	return f.results, nil
}

func (f *fakeController) Start(ctx context.Context, p app.StartParams) (app.StartResult, error) {
	if p.Connect {
		if err := f.record("start-connect", p.ID); err != nil {
			return app.StartResult{}, err
		}
		return app.StartResult{Launch: &lifecycle.Launch{VM: p.ID, Viewer: lifecycle.Command{Name: "remmina"}}}, nil
	}
	return app.StartResult{}, f.record("start", p.ID)
}

func (f *fakeController) Stop(_ context.Context, p app.StopParams) error {
	if p.Force {
		return f.record("force-stop", p.ID)
	}
	return f.record("stop", p.ID)
}

func (f *fakeController) Connect(_ context.Context, p app.ConnectParams) (lifecycle.Launch, error) {
	op := "connect"
	if p.Spice {
		op = "spice"
	}
	if err := f.record(op, p.ID); err != nil {
		return lifecycle.Launch{}, err
	}
	return lifecycle.Launch{VM: p.ID, Viewer: lifecycle.Command{Name: "remmina"}, PID: 77}, nil
}

func descs(ids ...string) []registry.Descriptor {
	out := make([]registry.Descriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, registry.Descriptor{ID: id, DisplayName: id, ConfigPath: "/vms/" + id + ".conf"})
	}
	return out
}

func statuses(pairs ...any) map[string]inspect.Result {
	out := map[string]inspect.Result{}
	for i := 0; i < len(pairs); i += 2 {
		out[pairs[i].(string)] = inspect.Result{Status: pairs[i+1].(inspect.Status)}
	}
	return out
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// newLoaded returns a model that has loaded ids and applied one inspection.
func newLoaded(t *testing.T, ctrl *fakeController, ids ...string) *Model {
	t.Helper()
	ctrl.vms = descs(ids...)
	m := New(ctrl, Options{Dir: "/vms", PollInterval: time.Second, StopGrace: 30 * time.Second, ReconcileTicks: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(vmsLoadedMsg{vms: ctrl.vms})
	if ctrl.results == nil {
		ctrl.results = map[string]inspect.Result{}
		for _, id := range ids {
			ctrl.results[id] = inspect.Result{Status: inspect.StatusStopped}
		}
	}
	m.Update(inspectedMsg{gen: m.gen, results: ctrl.results})
	return m
}

func press(t *testing.T, m *Model, k string) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(keyPress(k))
	return cmd
}

func status(m *Model, id string) inspect.Status {
	st, _ := m.tracker.Get(id)
	return st.Status
}

func TestNavigationWraps(t *testing.T) {
	m := newLoaded(t, &fakeController{}, "a", "b", "c")
	if m.list.Index() != 0 {
		t.Fatalf("expected initial selection 0, got %d", m.list.Index())
	}
	press(t, m, "k")
	if m.list.Index() != 2 {
		t.Fatalf("up from first must wrap to last, got %d", m.list.Index())
	}
	press(t, m, "down")
	if m.list.Index() != 0 {
		t.Fatalf("down from last must wrap to first, got %d", m.list.Index())
	}
	press(t, m, "j")
	press(t, m, "up")
	if m.list.Index() != 0 {
		t.Fatalf("expected 0, got %d", m.list.Index())
	}
}

func TestNavigationEmptyList(t *testing.T) {
	m := newLoaded(t, &fakeController{})
	press(t, m, "j")
	press(t, m, "k")
	if cmd := press(t, m, "r"); cmd != nil {
		t.Fatal("no action without a selection")
	}
}

func TestStartScenario(t *testing.T) {
	ctrl := &fakeController{}
	m := newLoaded(t, ctrl, "vm-a", "vm-b")

	cmd := press(t, m, "r")
	if m.phase != phaseActionInFlight {
		t.Fatalf("expected action in flight, got %v", m.phase)
	}
	m.Update(cmd())
	if len(ctrl.calls) != 1 || ctrl.calls[0] != (call{"start", "vm-a"}) {
		t.Fatalf("expected start vm-a, got %v", ctrl.calls)
	}
	if m.phase != phaseBrowsing {
		t.Fatalf("expected browsing after completion, got %v", m.phase)
	}
	if status(m, "vm-a") != inspect.StatusStarting || status(m, "vm-b") != inspect.StatusStopped {
		t.Fatalf("expected vm-a starting and vm-b stopped, got %v %v", status(m, "vm-a"), status(m, "vm-b"))
	}

	ctrl.results = statuses("vm-a", inspect.StatusStopped, "vm-b", inspect.StatusStopped)
	m.Update(inspectedMsg{gen: m.gen, results: ctrl.results})
	if status(m, "vm-a") != inspect.StatusStarting {
		t.Fatalf("optimistic starting must survive a stale poll, got %v", status(m, "vm-a"))
	}

	ctrl.results = statuses("vm-a", inspect.StatusRunning, "vm-b", inspect.StatusStopped)
	m.Update(inspectedMsg{gen: m.gen, results: ctrl.results})
	if status(m, "vm-a") != inspect.StatusRunning || status(m, "vm-b") != inspect.StatusStopped {
		t.Fatalf("expected vm-a running and vm-b stopped, got %v %v", status(m, "vm-a"), status(m, "vm-b"))
	}
}

func TestConnectOnStoppedShowsError(t *testing.T) {
	ctrl := &fakeController{err: map[string]error{"connect": fmt.Errorf("connect vm-a: %w", lifecycle.ErrNotRunning)}}
	m := newLoaded(t, ctrl, "vm-a")

	m.Update(press(t, m, "c")())
	if !m.noticeErr || !strings.Contains(m.notice, "not running") {
		t.Fatalf("expected not-running notice, got %q", m.notice)
	}
	if !strings.Contains(m.View(), "Error: connect vm-a: vm is not running") {
		t.Fatalf("view must show the error:\n%s", m.View())
	}
	if status(m, "vm-a") != inspect.StatusStopped {
		t.Fatalf("failed connect must not change state, got %v", status(m, "vm-a"))
	}

	m.Update(clearNoticeMsg{seq: m.noticeSeq})
	if m.notice != "" {
		t.Fatalf("notice should expire, got %q", m.notice)
	}
}

func TestSecondActionRefusedWhileBusy(t *testing.T) {
	ctrl := &fakeController{}
	m := newLoaded(t, ctrl, "vm-a", "vm-b")

	first := press(t, m, "r")
	press(t, m, "j")
	if m.list.Index() != 1 {
		t.Fatal("navigation must continue while an action is in flight")
	}
	press(t, m, "s")
	if !strings.Contains(m.notice, "busy") {
		t.Fatalf("expected busy notice, got %q", m.notice)
	}
	if m.action == nil || m.action.id != "vm-a" || m.action.kind != actionStart {
		t.Fatalf("first action must remain in flight, got %+v", m.action)
	}
	m.Update(first())
	if len(ctrl.calls) != 1 {
		t.Fatalf("only one action may run, got %v", ctrl.calls)
	}
}

func TestEscCancelsAction(t *testing.T) {
	ctrl := &fakeController{}
	m := newLoaded(t, ctrl, "vm-a")

	cmd := press(t, m, "enter")
	press(t, m, "esc")
	if m.phase != phaseBrowsing || m.action != nil {
		t.Fatalf("esc must return to browsing, got %v", m.phase)
	}
	m.Update(cmd())
	if status(m, "vm-a") != inspect.StatusStopped {
		t.Fatalf("late result of a cancelled action must be ignored, got %v", status(m, "vm-a"))
	}
	if !strings.Contains(strings.Join(m.logLines, "\n"), "cancelled") {
		t.Fatalf("expected cancellation in logs, got %v", m.logLines)
	}
}

func TestStaleInspectionIgnored(t *testing.T) {
	ctrl := &fakeController{}
	m := newLoaded(t, ctrl, "vm-a")

	old := m.gen
	m.Update(tickMsg{})
	if m.gen != old+1 {
		t.Fatalf("tick must start a new generation, got %d", m.gen)
	}
	m.Update(inspectedMsg{gen: old, results: statuses("vm-a", inspect.StatusRunning)})
	if status(m, "vm-a") != inspect.StatusStopped {
		t.Fatalf("superseded inspection must be ignored, got %v", status(m, "vm-a"))
	}
	m.Update(inspectedMsg{gen: m.gen, results: statuses("vm-a", inspect.StatusRunning)})
	if status(m, "vm-a") != inspect.StatusRunning {
		t.Fatalf("current inspection must apply, got %v", status(m, "vm-a"))
	}
}

func TestEmptyDirectory(t *testing.T) {
	ctrl := &fakeController{}
	m := New(ctrl, Options{Dir: "/home/u/.quickemu"})
	m.Update(vmsLoadedMsg{vms: []registry.Descriptor{}, err: fmt.Errorf("%w in /home/u/.quickemu", registry.ErrEmpty)})
	if !strings.Contains(m.View(), "No VMs found in /home/u/.quickemu") {
		t.Fatalf("expected empty state, got:\n%s", m.View())
	}
	if m.loadErr != nil {
		t.Fatalf("empty dir is not a load error: %v", m.loadErr)
	}
}

func TestUnreadableDirectory(t *testing.T) {
	ctrl := &fakeController{}
	m := newLoaded(t, ctrl, "vm-a")
	m.Update(vmsLoadedMsg{err: fmt.Errorf("%w: permission denied", registry.ErrConfigDirUnavailable)})
	if len(m.vms) != 0 || !strings.Contains(m.View(), "Cannot read /vms") {
		t.Fatalf("expected load error view, got:\n%s", m.View())
	}

	cmd := press(t, m, "R")
	if cmd == nil {
		t.Fatal("R must rescan")
	}
	m.Update(cmd())
	if m.loadErr != nil || len(m.vms) != 1 {
		t.Fatalf("rescan should recover, got err=%v vms=%v", m.loadErr, m.vms)
	}
}

func TestStopEscalatesAfterGrace(t *testing.T) {
	ctrl := &fakeController{results: statuses("vm-a", inspect.StatusRunning)}
	m := newLoaded(t, ctrl, "vm-a")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.Update(press(t, m, "s")())
	if status(m, "vm-a") != inspect.StatusStopping {
		t.Fatalf("expected optimistic stopping, got %v", status(m, "vm-a"))
	}

	_, cmd := m.Update(inspectedMsg{gen: m.gen, results: ctrl.results})
	if cmd != nil || m.phase != phaseBrowsing {
		t.Fatal("no escalation before the grace period")
	}

	now = now.Add(31 * time.Second)
	_, cmd = m.Update(inspectedMsg{gen: m.gen, results: ctrl.results})
	if cmd == nil || m.action == nil || m.action.kind != actionForceStop {
		t.Fatalf("expected force stop escalation, got action %+v", m.action)
	}
	m.Update(cmd())
	if got := ctrl.calls[len(ctrl.calls)-1]; got != (call{"force-stop", "vm-a"}) {
		t.Fatalf("expected force-stop call, got %v", ctrl.calls)
	}
	if len(m.stopDeadlines) != 0 {
		t.Fatalf("deadline must be cleared, got %v", m.stopDeadlines)
	}
}

func TestStopConfirmedClearsDeadline(t *testing.T) {
	ctrl := &fakeController{results: statuses("vm-a", inspect.StatusRunning)}
	m := newLoaded(t, ctrl, "vm-a")

	m.Update(press(t, m, "s")())
	m.Update(inspectedMsg{gen: m.gen, results: statuses("vm-a", inspect.StatusStopped)})
	if _, ok := m.stopDeadlines["vm-a"]; ok {
		t.Fatal("deadline must be cleared once the vm stopped")
	}
}

func TestStartAndConnectLogsViewer(t *testing.T) {
	ctrl := &fakeController{}
	m := newLoaded(t, ctrl, "vm-a")
	m.Update(press(t, m, "enter")())
	if ctrl.calls[0] != (call{"start-connect", "vm-a"}) {
		t.Fatalf("unexpected calls %v", ctrl.calls)
	}
	if !strings.Contains(strings.Join(m.logLines, "\n"), "remmina") {
		t.Fatalf("expected viewer in logs, got %v", m.logLines)
	}
}

func TestActionErrorKeepsBrowsing(t *testing.T) {
	ctrl := &fakeController{err: map[string]error{"start": errors.New("exec: quickemu: not found")}}
	m := newLoaded(t, ctrl, "vm-a")
	m.Update(press(t, m, "r")())
	if m.phase != phaseBrowsing || !m.noticeErr {
		t.Fatalf("expected browsing with error notice, got phase=%v notice=%q", m.phase, m.notice)
	}
}

func TestQuitEntersExiting(t *testing.T) {
	ctrl := &fakeController{}
	m := newLoaded(t, ctrl, "vm-a")
	pending := press(t, m, "r")

	cmd := press(t, m, "q")
	if m.phase != phaseExiting {
		t.Fatalf("expected exiting, got %v", m.phase)
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.Quit")
	}
	if _, cmd := m.Update(tickMsg{}); cmd != nil {
		t.Fatal("no polling after quit")
	}
	m.Update(pending())
	if m.action != nil {
		t.Fatal("no actions after quit")
	}
}

func TestHelpToggle(t *testing.T) {
	m := newLoaded(t, &fakeController{}, "vm-a")
	press(t, m, "?")
	if !m.help.ShowAll || !strings.Contains(m.View(), "force stop") {
		t.Fatal("expected full help")
	}
}
