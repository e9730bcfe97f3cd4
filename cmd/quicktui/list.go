package main

import (
	"errors"
	"fmt"

	"quicktui/internal/app"
	"quicktui/internal/output"
	"quicktui/internal/registry"

	"github.com/spf13/cobra"
)

var (
	listFormat    string
	listNoHeaders bool
	listAlive     bool
	listSearch    string
)

func init() {
	rootCmd.AddCommand(cmdList)

	cmdList.Flags().StringVarP(&listFormat, "output", "o", "table", "Output format: table, json or yaml")
	cmdList.Flags().BoolVar(&listNoHeaders, "no-headers", false, "Omit the table header")
	cmdList.Flags().BoolVar(&listAlive, "alive", false, "Only show VMs that are starting, running or stopping")
	cmdList.Flags().StringVar(&listSearch, "search", "", "Case-insensitive substring match on id or name")
}

var cmdList = &cobra.Command{
	Use:     "list [vm...]",
	Aliases: []string{"ls"},
	Short:   "List configured VMs and their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		formatter, err := output.NewFormatter(output.Options{Format: output.Format(listFormat), NoHeaders: listNoHeaders})
		if err != nil {
			return err
		}

		ctrl, closeFn, err := controllerFactory(false)
		if err != nil {
			return err
		}
		defer closeFn()

		vms, err := ctrl.List(cmd.Context(), app.ListParams{
			Filters: app.ListFilters{IDs: args, AliveOnly: listAlive, TextSearch: listSearch},
			Timeout: inspectTimeout(),
		})
		if err != nil && !errors.Is(err, registry.ErrEmpty) {
			return err
		}

		out := cmd.OutOrStdout()
		if len(vms) == 0 && output.Format(listFormat) == output.FormatTable {
			fmt.Fprintf(out, "No VMs found in %s\n", ctrl.Dir())
			return nil
		}
		return formatter.FormatVMList(out, vms)
	},
}
