package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"quicktui/internal/app"
)

// TableFormatter formats VMs as an aligned table.
type TableFormatter struct {
	NoHeaders bool
}

// FormatVMList writes one row per VM.
func (f *TableFormatter) FormatVMList(w io.Writer, vms []app.VM) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !f.NoHeaders {
		_, _ = fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tCONNECT\tPIDS")
	}
	for _, vm := range vms {
		conn := "-"
		if vm.Conn != nil {
			conn = vm.Conn.URL()
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", vm.ID, vm.DisplayName, vm.Status, conn, pids(vm.PIDs))
	}
	return tw.Flush()
}

func pids(in []int32) string {
	if len(in) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(in))
	for _, p := range in {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ",")
}
