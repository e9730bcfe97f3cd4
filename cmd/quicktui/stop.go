package main

import (
	"fmt"

	"quicktui/internal/app"

	"github.com/spf13/cobra"
)

var stopForce bool

func init() {
	rootCmd.AddCommand(cmdStop)
	cmdStop.Flags().BoolVarP(&stopForce, "force", "f", false, "Kill the VM instead of asking the guest to power down")
}

var cmdStop = &cobra.Command{
	Use:   "stop <vm>",
	Short: "Stop a running VM",
	Long:  "Sends an ACPI power-down through the VM's monitor socket (SIGTERM if the socket is gone). --force runs quickemu --kill, or SIGKILL as a last resort.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, closeFn, err := controllerFactory(false)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := ctrl.Stop(cmd.Context(), app.StopParams{ID: args[0], Force: stopForce}); err != nil {
			return err
		}
		if stopForce {
			fmt.Fprintf(cmd.OutOrStdout(), "Killed %s\n", args[0])
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Stop requested for %s\n", args[0])
		}
		return nil
	},
}
