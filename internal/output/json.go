package output

import (
	"encoding/json"
	"fmt"
	"io"

	"quicktui/internal/app"
)

// JSONFormatter formats VMs as an indented JSON array.
type JSONFormatter struct{}

// FormatVMList writes vms as a JSON array; an empty list is [].
func (f *JSONFormatter) FormatVMList(w io.Writer, vms []app.VM) error {
	if vms == nil {
		vms = []app.VM{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(vms); err != nil {
		return fmt.Errorf("failed to marshal VMs to JSON: %w", err)
	}
	return nil
}
