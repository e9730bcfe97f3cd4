// Package lifecycle starts, stops and connects to quickemu VMs. Every operation
// re-inspects the process table first, so callers never act on stale state.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"quicktui/internal/config"
	"quicktui/internal/inspect"
	"quicktui/internal/logging"
	"quicktui/internal/registry"
)

const (
	defaultBackoffMin = 500 * time.Millisecond
	defaultBackoffMax = 4 * time.Second
)

// Registry resolves a VM id to its descriptor.
type Registry interface {
	Lookup(id string) (registry.Descriptor, error)
}

// Inspector reports the live state of one VM.
type Inspector interface {
	Inspect(ctx context.Context, vm registry.Descriptor) inspect.Result
}

// Options wires a Controller. Nil collaborators get production defaults.
type Options struct {
	Config    config.Config
	Registry  Registry
	Inspector Inspector
	Spawner   Spawner
	Monitor   Monitor
	Logger    *log.Logger
}

// Controller issues lifecycle actions against VMs.
type Controller struct {
	cfg     config.Config
	reg     Registry
	insp    Inspector
	spawner Spawner
	monitor Monitor
	log     *log.Logger

	signal     func(pid int32, sig os.Signal) error
	lookPath   func(string) (string, error)
	probe      func(ctx context.Context, addr string) bool
	getenv     func(string) string
	backoffMin time.Duration
	backoffMax time.Duration
}

// Launch describes a viewer started for a VM.
type Launch struct {
	VM     string
	Viewer Command
	Conn   inspect.ConnectionInfo
	PID    int
}

// New builds a Controller.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Controller{
		cfg:        opts.Config,
		reg:        opts.Registry,
		insp:       opts.Inspector,
		spawner:    opts.Spawner,
		monitor:    opts.Monitor,
		log:        logger,
		signal:     signalPID,
		lookPath:   exec.LookPath,
		probe:      portOpen,
		getenv:     os.Getenv,
		backoffMin: defaultBackoffMin,
		backoffMax: defaultBackoffMax,
	}
	if c.reg == nil {
		c.reg = registry.New(opts.Config.QuickemuDir)
	}
	if c.insp == nil {
		c.insp = inspect.New(inspect.Options{Launcher: opts.Config.Launcher, RuntimeRoot: opts.Config.QuickemuDir})
	}
	if c.spawner == nil {
		c.spawner = ExecSpawner{Logger: logger}
	}
	if c.monitor == nil {
		c.monitor = HMPMonitor{}
	}
	return c
}

// Start launches the VM unless it already has a live emulator or launcher.
// It returns as soon as the launcher is spawned.
func (c *Controller) Start(ctx context.Context, id string) error {
	logger := c.action("start", id)

	vm, res, err := c.current(ctx, id)
	if err != nil {
		return err
	}
	if res.Status == inspect.StatusRunning || res.Status == inspect.StatusStarting {
		return fmt.Errorf("start %s: %w", id, ErrAlreadyRunning)
	}

	args := []string{"--vm", vm.ConfigPath}
	if hints, err := registry.ReadHints(vm.ConfigPath); err == nil {
		if proto, _, ok := hints.Remote(); ok {
			logger.Info("launching headless", "protocol", proto)
			args = append(args, "--display", "none")
		}
	}
	cmd := Command{Name: c.cfg.Launcher, Args: args, Dir: filepath.Dir(vm.ConfigPath)}
	pid, err := c.spawner.Spawn(ctx, cmd)
	if err != nil {
		logger.Error("launcher spawn failed", "cmd", cmd.String(), "err", err)
		return fmt.Errorf("start %s: %w: %w", id, ErrExternalSpawnFailed, err)
	}
	logger.Info("launcher started", "pid", pid, "cmd", cmd.String())
	return nil
}

// Stop asks the guest to power down. It prefers the monitor socket and falls
// back to SIGTERM on the VM processes. It does not wait for the VM to exit.
func (c *Controller) Stop(ctx context.Context, id string) error {
	logger := c.action("stop", id)

	_, res, err := c.current(ctx, id)
	if err != nil {
		return err
	}
	pids := append(append([]int32(nil), res.PIDs...), res.LauncherPIDs...)
	if !res.Status.Alive() || len(pids) == 0 {
		return fmt.Errorf("stop %s: %w", id, ErrNotRunning)
	}

	if len(res.PIDs) > 0 {
		sock := monitorSocket(c.cfg.QuickemuDir, id)
		err := c.monitor.Powerdown(ctx, sock)
		if err == nil {
			logger.Info("powerdown requested", "socket", sock)
			return nil
		}
		logger.Warn("monitor unavailable, falling back to SIGTERM", "socket", sock, "err", err)
	}
	if err := signalAll(c.signal, pids, termSignal); err != nil {
		return fmt.Errorf("stop %s: %w", id, err)
	}
	logger.Info("terminate signal sent", "pids", pids)
	return nil
}

// ForceStop kills the VM through the launcher, or with SIGKILL if the launcher cannot be spawned.
func (c *Controller) ForceStop(ctx context.Context, id string) error {
	logger := c.action("force-stop", id)

	vm, res, err := c.current(ctx, id)
	if err != nil {
		return err
	}
	pids := append(append([]int32(nil), res.PIDs...), res.LauncherPIDs...)
	if !res.Status.Alive() || len(pids) == 0 {
		return fmt.Errorf("force stop %s: %w", id, ErrNotRunning)
	}

	cmd := Command{Name: c.cfg.Launcher, Args: []string{"--kill", "--vm", vm.ConfigPath}, Dir: filepath.Dir(vm.ConfigPath)}
	pid, spawnErr := c.spawner.Spawn(ctx, cmd)
	if spawnErr == nil {
		logger.Info("kill requested through launcher", "pid", pid)
		return nil
	}
	logger.Warn("launcher kill failed, sending SIGKILL", "err", spawnErr, "pids", pids)
	if err := signalAll(c.signal, pids, os.Kill); err != nil {
		return fmt.Errorf("force stop %s: %w: %w", id, ErrExternalSpawnFailed, errors.Join(spawnErr, err))
	}
	return nil
}

// Connect spawns exactly one viewer for a running VM.
func (c *Controller) Connect(ctx context.Context, id string) (Launch, error) {
	logger := c.action("connect", id)

	_, res, err := c.current(ctx, id)
	if err != nil {
		return Launch{}, err
	}
	if res.Status != inspect.StatusRunning {
		return Launch{}, fmt.Errorf("connect %s: %w", id, ErrNotRunning)
	}
	conn, err := c.connection(res)
	if err != nil {
		return Launch{}, fmt.Errorf("connect %s: %w", id, err)
	}
	return c.launchViewer(ctx, logger, id, conn, false)
}

// ConnectSpice connects over SPICE whatever the VM's preferred protocol,
// using the discovered SPICE port or default_spice_port.
func (c *Controller) ConnectSpice(ctx context.Context, id string) (Launch, error) {
	logger := c.action("connect-spice", id)

	_, res, err := c.current(ctx, id)
	if err != nil {
		return Launch{}, err
	}
	if res.Status != inspect.StatusRunning {
		return Launch{}, fmt.Errorf("connect %s: %w", id, ErrNotRunning)
	}
	var conn inspect.ConnectionInfo
	switch {
	case res.Conn != nil && res.Conn.Protocol == registry.ProtocolSpice:
		conn = *res.Conn
	case c.cfg.DefaultSpicePort > 0:
		conn = c.defaultSpice()
	default:
		return Launch{}, fmt.Errorf("connect %s: %w", id, ErrNoConnectionInfo)
	}
	return c.launchViewer(ctx, logger, id, conn, true)
}

// StartAndConnect starts the VM if needed, waits with exponential backoff until
// its display port accepts connections, then connects. The wait is bounded by
// boot_timeout and by ctx.
func (c *Controller) StartAndConnect(ctx context.Context, id string) (Launch, error) {
	logger := c.action("start-connect", id)

	if err := c.Start(ctx, id); err != nil && !errors.Is(err, ErrAlreadyRunning) {
		return Launch{}, err
	}
	vm, err := c.lookup(id)
	if err != nil {
		return Launch{}, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.BootTimeout)
	defer cancel()

	delay := c.backoffMin
	for attempt := 1; ; attempt++ {
		res := c.insp.Inspect(waitCtx, vm)
		if res.Status == inspect.StatusRunning {
			conn, err := c.connection(res)
			if err != nil {
				return Launch{}, fmt.Errorf("connect %s: %w", id, err)
			}
			if c.probe(waitCtx, conn.Addr()) {
				logger.Info("vm reachable", "attempt", attempt, "addr", conn.Addr())
				return c.launchViewer(ctx, logger, id, conn, false)
			}
		}
		logger.Debug("waiting for vm", "attempt", attempt, "status", res.Status, "next", delay)

		timer := time.NewTimer(delay)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			if err := ctx.Err(); err != nil {
				return Launch{}, err
			}
			return Launch{}, fmt.Errorf("start %s: %w (%s)", id, ErrBootTimeout, c.cfg.BootTimeout)
		case <-timer.C:
		}
		delay *= 2
		if delay > c.backoffMax {
			delay = c.backoffMax
		}
	}
}

func (c *Controller) launchViewer(ctx context.Context, logger *log.Logger, id string, conn inspect.ConnectionInfo, forceSpice bool) (Launch, error) {
	req := viewerRequest{
		OSType:    c.cfg.OSType,
		RemoteApp: c.cfg.RemoteApp,
		Title:     id,
		Conn:      conn,
	}
	if !forceSpice {
		req.Profile = remminaProfile(c.cfg.RemminaDir, id, c.cfg.Overrides)
	}
	if c.cfg.OSType == "linux" && c.getenv("DISPLAY") == "" && c.getenv("WAYLAND_DISPLAY") == "" {
		req.Display = ":0"
	}

	viewer, err := pickViewer(viewerCandidates(req), c.lookPath)
	if err != nil {
		logger.Error("no viewer available", "err", err)
		return Launch{}, fmt.Errorf("connect %s: %w", id, err)
	}
	pid, err := c.spawner.Spawn(ctx, viewer)
	if err != nil {
		logger.Error("viewer spawn failed", "cmd", viewer.String(), "err", err)
		return Launch{}, fmt.Errorf("connect %s: %w: %w", id, ErrExternalSpawnFailed, err)
	}
	logger.Info("viewer started", "pid", pid, "cmd", viewer.String(), "source", conn.Source)
	return Launch{VM: id, Viewer: viewer, Conn: conn, PID: pid}, nil
}

// connection returns the inspected connection info or the configured SPICE default.
func (c *Controller) connection(res inspect.Result) (inspect.ConnectionInfo, error) {
	if res.Conn != nil {
		return *res.Conn, nil
	}
	if c.cfg.DefaultSpicePort > 0 {
		return c.defaultSpice(), nil
	}
	return inspect.ConnectionInfo{}, ErrNoConnectionInfo
}

func (c *Controller) defaultSpice() inspect.ConnectionInfo {
	return inspect.ConnectionInfo{
		Protocol: registry.ProtocolSpice,
		Host:     inspect.LocalHost,
		Port:     c.cfg.DefaultSpicePort,
		Source:   "default",
	}
}

// current resolves id and inspects it. An inspection failure is returned as an
// error rather than acted upon.
func (c *Controller) current(ctx context.Context, id string) (registry.Descriptor, inspect.Result, error) {
	vm, err := c.lookup(id)
	if err != nil {
		return vm, inspect.Result{}, err
	}
	res := c.insp.Inspect(ctx, vm)
	if res.Err != nil {
		return vm, res, res.Err
	}
	return vm, res, nil
}

func (c *Controller) lookup(id string) (registry.Descriptor, error) {
	vm, err := c.reg.Lookup(id)
	if err != nil {
		return vm, fmt.Errorf("resolve vm %q: %w", id, err)
	}
	return vm, nil
}

// action returns a logger tagged with a per-call correlation id.
func (c *Controller) action(op, id string) *log.Logger {
	return c.log.With("op", op, "vm", id, "action", uuid.NewString())
}
