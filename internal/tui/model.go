// Package tui is the interactive session: a VM list kept in sync with the
// process table, driving lifecycle actions from single keystrokes.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"quicktui/internal/app"
	"quicktui/internal/inspect"
	"quicktui/internal/lifecycle"
	"quicktui/internal/logging"
	"quicktui/internal/registry"
	"quicktui/internal/state"
)

const (
	maxLogLines = 200
	logHeight   = 6
)

// Controller defines the subset of app.App behaviour the TUI needs.
type Controller interface {
	Discover() ([]registry.Descriptor, error)
	InspectAll(context.Context, []registry.Descriptor) (map[string]inspect.Result, error)
	Start(context.Context, app.StartParams) (app.StartResult, error)
	Stop(context.Context, app.StopParams) error
	Connect(context.Context, app.ConnectParams) (lifecycle.Launch, error)
}

// Options tunes the session loop.
type Options struct {
	// Dir is shown in the header and the empty state.
	Dir            string
	PollInterval   time.Duration
	StopGrace      time.Duration
	ReconcileTicks int
	Logger         *log.Logger
}

type phase int

const (
	phaseBrowsing phase = iota
	phaseActionInFlight
	phaseExiting
)

type inflight struct {
	seq    uint64
	kind   actionKind
	id     string
	cancel context.CancelFunc
}

// Model represents the Bubble Tea state.
type Model struct {
	ctrl Controller
	opts Options
	log  *log.Logger
	now  func() time.Time

	phase   phase
	vms     []registry.Descriptor
	tracker *state.Tracker
	loadErr error

	list    list.Model
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	logs    viewport.Model

	logLines []string

	notice    string
	noticeErr bool
	noticeSeq uint64

	gen           uint64
	cancelInspect context.CancelFunc

	seq    uint64
	action *inflight

	// stopDeadlines holds VMs asked to stop gracefully and when to force them.
	stopDeadlines map[string]time.Time

	width  int
	height int
}

// New constructs a TUI model with default styles.
func New(ctrl Controller, opts Options) *Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.StopGrace <= 0 {
		opts.StopGrace = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	delegate := list.NewDefaultDelegate()
	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Virtual machines"
	lst.SetShowHelp(false)
	lst.SetShowStatusBar(false)
	lst.SetFilteringEnabled(false)
	lst.DisableQuitKeybindings()

	return &Model{
		ctrl:          ctrl,
		opts:          opts,
		log:           logger,
		now:           time.Now,
		tracker:       state.NewTracker(opts.ReconcileTicks),
		list:          lst,
		keys:          defaultKeyMap(),
		help:          help.New(),
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		logs:          viewport.New(0, logHeight),
		stopDeadlines: map[string]time.Time{},
	}
}

// Run spins up the Bubble Tea program and blocks until the user quits.
func Run(ctrl Controller, opts Options) error {
	m := New(ctrl, opts)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	m.shutdown()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(loadVMsCmd(m.ctrl), tickCmd(m.opts.PollInterval), m.spinner.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.phase == phaseExiting {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case vmsLoadedMsg:
		return m, m.applyVMs(msg)

	case tickMsg:
		return m, tea.Batch(m.startInspection(), tickCmd(m.opts.PollInterval))

	case inspectedMsg:
		return m, m.applyInspection(msg)

	case actionDoneMsg:
		return m, m.finishAction(msg)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
			m.noticeErr = false
		}

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	case key.Matches(msg, m.keys.Cancel):
		m.cancelAction()
	case key.Matches(msg, m.keys.Refresh):
		m.logf("rescanning %s", m.opts.Dir)
		return loadVMsCmd(m.ctrl)
	case key.Matches(msg, m.keys.Start):
		return m.beginAction(actionStart)
	case key.Matches(msg, m.keys.StartConnect):
		return m.beginAction(actionStartConnect)
	case key.Matches(msg, m.keys.Connect):
		return m.beginAction(actionConnect)
	case key.Matches(msg, m.keys.Spice):
		return m.beginAction(actionSpice)
	case key.Matches(msg, m.keys.Stop):
		return m.beginAction(actionStop)
	case key.Matches(msg, m.keys.ForceStop):
		return m.beginAction(actionForceStop)
	}
	return nil
}

// move shifts the selection by delta, wrapping at both ends.
func (m *Model) move(delta int) {
	n := len(m.vms)
	if n == 0 {
		return
	}
	idx := (m.list.Index() + delta) % n
	if idx < 0 {
		idx += n
	}
	m.list.Select(idx)
}

func (m *Model) selected() (registry.Descriptor, bool) {
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.vms) {
		return registry.Descriptor{}, false
	}
	return m.vms[idx], true
}

func (m *Model) applyVMs(msg vmsLoadedMsg) tea.Cmd {
	m.loadErr = nil
	if msg.err != nil && !errors.Is(msg.err, registry.ErrEmpty) {
		m.loadErr = msg.err
		m.vms = nil
		m.tracker.Reset(nil)
		m.refreshItems()
		m.logf("error: %v", msg.err)
		return nil
	}

	prev, _ := m.selected()
	m.vms = msg.vms
	m.tracker.Reset(m.vms)
	for id := range m.stopDeadlines {
		if _, ok := m.tracker.Get(id); !ok {
			delete(m.stopDeadlines, id)
		}
	}
	m.refreshItems()
	m.list.Select(0)
	for i, vm := range m.vms {
		if vm.ID == prev.ID {
			m.list.Select(i)
			break
		}
	}
	m.logf("found %d VM(s) in %s", len(m.vms), m.opts.Dir)
	return m.startInspection()
}

// startInspection supersedes any inspection still running.
func (m *Model) startInspection() tea.Cmd {
	if len(m.vms) == 0 {
		return nil
	}
	if m.cancelInspect != nil {
		m.cancelInspect()
	}
	m.gen++
	ctx, cancel := context.WithTimeout(context.Background(), inspectTimeout)
	m.cancelInspect = cancel
	vms := append([]registry.Descriptor(nil), m.vms...)
	return inspectCmd(ctx, m.ctrl, m.gen, vms)
}

func (m *Model) applyInspection(msg inspectedMsg) tea.Cmd {
	if msg.gen != m.gen {
		return nil
	}
	if m.cancelInspect != nil {
		m.cancelInspect()
		m.cancelInspect = nil
	}
	if msg.err != nil {
		m.log.Warn("inspection failed", "err", msg.err)
	}
	m.tracker.Apply(msg.results)
	m.refreshItems()
	return m.escalateStops()
}

// escalateStops force-stops VMs still alive stop_grace after a graceful stop.
func (m *Model) escalateStops() tea.Cmd {
	now := m.now()
	for _, vm := range m.vms {
		deadline, ok := m.stopDeadlines[vm.ID]
		if !ok {
			continue
		}
		st, _ := m.tracker.Get(vm.ID)
		if st.Status == inspect.StatusStopped {
			delete(m.stopDeadlines, vm.ID)
			continue
		}
		if now.Before(deadline) || m.phase != phaseBrowsing {
			continue
		}
		delete(m.stopDeadlines, vm.ID)
		m.logf("%s still running after %s, forcing stop", vm.ID, m.opts.StopGrace)
		return m.startAction(actionForceStop, vm.ID)
	}
	return nil
}

func (m *Model) beginAction(kind actionKind) tea.Cmd {
	if m.phase == phaseActionInFlight {
		return m.setNotice(fmt.Sprintf("busy: %s %s in progress (esc to cancel)", m.action.kind, m.action.id), false)
	}
	vm, ok := m.selected()
	if !ok {
		return nil
	}
	return m.startAction(kind, vm.ID)
}

func (m *Model) startAction(kind actionKind, id string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.seq++
	m.action = &inflight{seq: m.seq, kind: kind, id: id, cancel: cancel}
	m.phase = phaseActionInFlight
	m.logf("%s %s…", kind, id)
	return actionCmd(ctx, m.ctrl, m.seq, kind, id)
}

func (m *Model) cancelAction() {
	if m.action == nil {
		return
	}
	m.action.cancel()
	m.logf("%s %s cancelled", m.action.kind, m.action.id)
	m.action = nil
	m.phase = phaseBrowsing
}

func (m *Model) finishAction(msg actionDoneMsg) tea.Cmd {
	if m.action == nil || msg.seq != m.action.seq {
		return nil
	}
	m.action.cancel()
	m.action = nil
	m.phase = phaseBrowsing

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return nil
		}
		m.logf("error: %v", msg.err)
		return tea.Batch(m.setNotice(msg.err.Error(), true), m.startInspection())
	}

	switch msg.kind {
	case actionStart:
		m.tracker.MarkStarting(msg.id)
		m.logf("%s starting", msg.id)
	case actionStop:
		m.tracker.MarkStopping(msg.id)
		m.stopDeadlines[msg.id] = m.now().Add(m.opts.StopGrace)
		m.logf("%s stopping", msg.id)
	case actionForceStop:
		m.tracker.MarkStopping(msg.id)
		delete(m.stopDeadlines, msg.id)
		m.logf("%s killed", msg.id)
	}
	if msg.launch != nil {
		m.logf("%s: %s opened %s (pid %d)", msg.id, msg.launch.Viewer.Name, msg.launch.Conn.URL(), msg.launch.PID)
	}
	m.refreshItems()
	return m.startInspection()
}

func (m *Model) refreshItems() {
	items := make([]list.Item, 0, len(m.vms))
	for _, vm := range m.vms {
		st, _ := m.tracker.Get(vm.ID)
		items = append(items, vmItem{vm: vm, state: st})
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx < len(items) {
		m.list.Select(idx)
	}
}

func (m *Model) setNotice(text string, isErr bool) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	m.noticeErr = isErr
	return clearNoticeCmd(m.noticeSeq)
}

func (m *Model) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	m.log.Info(line)
	m.logLines = append(m.logLines, m.now().Format("15:04:05")+" "+line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.logs.SetContent(strings.Join(m.logLines, "\n"))
	m.logs.GotoBottom()
}

// shutdown enters Exiting and cancels all outstanding work.
func (m *Model) shutdown() {
	m.phase = phaseExiting
	if m.action != nil {
		m.action.cancel()
		m.action = nil
	}
	if m.cancelInspect != nil {
		m.cancelInspect()
		m.cancelInspect = nil
	}
}

func (m *Model) resize(w, h int) {
	m.width = w
	m.height = h
	m.layout()
}

func (m *Model) layout() {
	helpLines := 1
	if m.help.ShowAll {
		helpLines = 5
	}
	// header, detail, notice, logs title and a blank separator.
	reserved := 5 + logHeight + helpLines
	listHeight := m.height - reserved
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width, listHeight)
	m.logs.Width = m.width
	m.logs.Height = logHeight
	m.help.Width = m.width
}
