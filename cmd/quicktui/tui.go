package main

import (
	"errors"
	"fmt"

	"quicktui/internal/registry"
	"quicktui/internal/tui"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cmdTUI)
}

var cmdTUI = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

// tuiRunner is swapped in tests so no terminal is needed.
var tuiRunner = tui.Run

func runTUI(cmd *cobra.Command) error {
	ctrl, closeFn, err := controllerFactory(true)
	if err != nil {
		return err
	}
	defer closeFn()

	// An unreadable VM directory is fatal at startup; an empty one is not.
	if _, err := ctrl.Discover(); err != nil && !errors.Is(err, registry.ErrEmpty) {
		return err
	}

	cfg := ctrl.Config()
	if err := tuiRunner(ctrl, tui.Options{
		Dir:            ctrl.Dir(),
		PollInterval:   cfg.PollInterval,
		StopGrace:      cfg.StopGrace,
		ReconcileTicks: cfg.ReconcileTicks,
		Logger:         ctrl.Logger(),
	}); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
