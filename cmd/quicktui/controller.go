package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"quicktui/internal/app"
	"quicktui/internal/config"
	"quicktui/internal/logging"
	"quicktui/internal/tui"
)

// controllerAPI is the part of app.App the commands use.
type controllerAPI interface {
	tui.Controller
	List(context.Context, app.ListParams) ([]app.VM, error)
	Status(ctx context.Context, id string, timeout time.Duration) (app.VM, error)
	Config() config.Config
	Dir() string
	Logger() *log.Logger
}

// controllerFactory builds the controller; tests swap it for a stub.
var controllerFactory = newController

// newController loads the config and wires logging. interactive sessions must
// not write to the terminal, so they only ever log to the log file.
func newController(interactive bool) (controllerAPI, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	opts := logging.Options{File: cfg.LogFile, Level: cfg.LogLevel}
	if cfg.LogFile == "" && !interactive {
		opts.Writer = os.Stderr
		opts.Level = "warn"
	}
	logger, closer, err := logging.Setup(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logging: %w", err)
	}
	logger.Debug("config loaded", "quickemu_dir", cfg.QuickemuDir, "launcher", cfg.Launcher)

	ctrl := app.New(app.Options{Config: cfg, Logger: logger})
	return ctrl, func() { _ = closer.Close() }, nil
}

var inspectTimeoutSeconds int

func inspectTimeout() time.Duration {
	if inspectTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(inspectTimeoutSeconds) * time.Second
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&inspectTimeoutSeconds, "timeout", "t", 5, "Timeout in seconds for process-table inspection")
}
