package app

import (
	"github.com/charmbracelet/log"

	"quicktui/internal/config"
	"quicktui/internal/inspect"
	"quicktui/internal/lifecycle"
	"quicktui/internal/logging"
	"quicktui/internal/registry"
)

// Options configures the top-level controller.
type Options struct {
	// Config is the loaded configuration.
	Config config.Config
	// Logger receives structured action logs; nil discards them.
	Logger *log.Logger
}

// App exposes high-level operations that the CLI/TUI can reuse.
type App struct {
	cfg  config.Config
	log  *log.Logger
	reg  *registry.Registry
	insp *inspect.Inspector
	ctrl *lifecycle.Controller
}

// New constructs the shared controller facade.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	reg := registry.New(opts.Config.QuickemuDir)
	insp := inspect.New(inspect.Options{
		Source:      newProcessSource(),
		Launcher:    opts.Config.Launcher,
		RuntimeRoot: opts.Config.QuickemuDir,
	})
	ctrl := lifecycle.New(lifecycle.Options{
		Config:    opts.Config,
		Registry:  reg,
		Inspector: insp,
		Spawner:   newSpawner(logger),
		Monitor:   newMonitor(),
		Logger:    logger,
	})
	return &App{cfg: opts.Config, log: logger, reg: reg, insp: insp, ctrl: ctrl}
}

// Config returns the configuration the app was built with.
func (a *App) Config() config.Config {
	return a.cfg
}

// Dir returns the VM configuration directory.
func (a *App) Dir() string {
	return a.reg.Dir()
}

// Logger returns the structured logger shared with the TUI.
func (a *App) Logger() *log.Logger {
	return a.log
}
