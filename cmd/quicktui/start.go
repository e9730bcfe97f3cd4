package main

import (
	"fmt"
	"time"

	"quicktui/internal/app"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var startConnect bool

func init() {
	rootCmd.AddCommand(cmdStart)
	cmdStart.Flags().BoolVarP(&startConnect, "connect", "c", false, "Wait for the VM to boot and open a viewer")
}

var cmdStart = &cobra.Command{
	Use:   "start <vm>",
	Short: "Start a VM with quickemu",
	Long:  "Spawns quickemu for the VM and returns. With --connect, waits until the VM's display port answers and opens a viewer.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, closeFn, err := controllerFactory(false)
		if err != nil {
			return err
		}
		defer closeFn()

		out := cmd.OutOrStdout()
		if !startConnect {
			if _, err := ctrl.Start(cmd.Context(), app.StartParams{ID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(out, "Started %s\n", args[0])
			return nil
		}

		spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		spin.Suffix = fmt.Sprintf(" Waiting for %s to boot...", args[0])
		spin.Start()
		res, err := ctrl.Start(cmd.Context(), app.StartParams{ID: args[0], Connect: true})
		spin.Stop()
		if err != nil {
			return err
		}
		if res.Launch != nil {
			fmt.Fprintf(out, "Connected to %s with %s (%s)\n", args[0], res.Launch.Viewer.Name, res.Launch.Conn.URL())
		}
		return nil
	},
}
