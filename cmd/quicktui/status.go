package main

import (
	"quicktui/internal/app"
	"quicktui/internal/output"

	"github.com/spf13/cobra"
)

var statusFormat string

func init() {
	rootCmd.AddCommand(cmdStatus)
	cmdStatus.Flags().StringVarP(&statusFormat, "output", "o", "table", "Output format: table, json or yaml")
}

var cmdStatus = &cobra.Command{
	Use:   "status <vm>",
	Short: "Show the live status of one VM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatter, err := output.NewFormatter(output.Options{Format: output.Format(statusFormat)})
		if err != nil {
			return err
		}

		ctrl, closeFn, err := controllerFactory(false)
		if err != nil {
			return err
		}
		defer closeFn()

		vm, err := ctrl.Status(cmd.Context(), args[0], inspectTimeout())
		if err != nil {
			return err
		}
		return formatter.FormatVMList(cmd.OutOrStdout(), []app.VM{vm})
	},
}
