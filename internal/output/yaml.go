package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"quicktui/internal/app"
)

// YAMLFormatter formats VMs as a YAML stream, one document per VM.
type YAMLFormatter struct{}

// FormatVMList writes vms separated by ---.
func (f *YAMLFormatter) FormatVMList(w io.Writer, vms []app.VM) error {
	for i, vm := range vms {
		data, err := yaml.Marshal(vm)
		if err != nil {
			return fmt.Errorf("failed to marshal VM %s to YAML: %w", vm.ID, err)
		}
		if i > 0 {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}
