package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"quicktui/internal/app"
	"quicktui/internal/inspect"
	"quicktui/internal/lifecycle"
	"quicktui/internal/registry"
)

const (
	inspectTimeout = 5 * time.Second
	noticeTTL      = 5 * time.Second
)

type actionKind string

const (
	actionStart        actionKind = "start"
	actionStartConnect actionKind = "start & connect"
	actionStop         actionKind = "stop"
	actionForceStop    actionKind = "force stop"
	actionConnect      actionKind = "connect"
	actionSpice        actionKind = "spice connect"
)

type vmsLoadedMsg struct {
	vms []registry.Descriptor
	err error
}

type tickMsg struct{}

type inspectedMsg struct {
	gen     uint64
	results map[string]inspect.Result
	err     error
}

type actionDoneMsg struct {
	seq    uint64
	kind   actionKind
	id     string
	launch *lifecycle.Launch
	err    error
}

type clearNoticeMsg struct{ seq uint64 }

func loadVMsCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		vms, err := ctrl.Discover()
		return vmsLoadedMsg{vms: vms, err: err}
	}
}

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg { return tickMsg{} })
}

func inspectCmd(ctx context.Context, ctrl Controller, gen uint64, vms []registry.Descriptor) tea.Cmd {
	return func() tea.Msg {
		results, err := ctrl.InspectAll(ctx, vms)
		return inspectedMsg{gen: gen, results: results, err: err}
	}
}

func actionCmd(ctx context.Context, ctrl Controller, seq uint64, kind actionKind, id string) tea.Cmd {
	return func() tea.Msg {
		done := actionDoneMsg{seq: seq, kind: kind, id: id}
		switch kind {
		case actionStart:
			_, done.err = ctrl.Start(ctx, app.StartParams{ID: id})
		case actionStartConnect:
			var res app.StartResult
			res, done.err = ctrl.Start(ctx, app.StartParams{ID: id, Connect: true})
			done.launch = res.Launch
		case actionStop:
			done.err = ctrl.Stop(ctx, app.StopParams{ID: id})
		case actionForceStop:
			done.err = ctrl.Stop(ctx, app.StopParams{ID: id, Force: true})
		case actionConnect, actionSpice:
			launch, err := ctrl.Connect(ctx, app.ConnectParams{ID: id, Spice: kind == actionSpice})
			if err == nil {
				done.launch = &launch
			}
			done.err = err
		}
		return done
	}
}

func clearNoticeCmd(seq uint64) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}
