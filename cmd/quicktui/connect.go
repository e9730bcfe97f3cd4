package main

import (
	"fmt"

	"quicktui/internal/app"

	"github.com/spf13/cobra"
)

var connectSpice bool

func init() {
	rootCmd.AddCommand(cmdConnect)
	cmdConnect.Flags().BoolVar(&connectSpice, "spice", false, "Force a SPICE viewer even if the VM forwards RDP or VNC")
}

var cmdConnect = &cobra.Command{
	Use:   "connect <vm>",
	Short: "Open a viewer for a running VM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, closeFn, err := controllerFactory(false)
		if err != nil {
			return err
		}
		defer closeFn()

		launch, err := ctrl.Connect(cmd.Context(), app.ConnectParams{ID: args[0], Spice: connectSpice})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s with %s (%s)\n", args[0], launch.Viewer.Name, launch.Conn.URL())
		return nil
	},
}
