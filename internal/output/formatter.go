// Package output renders VM status for the CLI in table, JSON or YAML form.
package output

import (
	"fmt"
	"io"

	"quicktui/internal/app"
)

// Format represents an output format type.
type Format string

const (
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
)

// Formatter writes VMs to w.
type Formatter interface {
	FormatVMList(w io.Writer, vms []app.VM) error
}

// Options contains options for formatting output.
type Options struct {
	Format Format
	// NoHeaders omits the header row in table format.
	NoHeaders bool
}

// NewFormatter creates a Formatter for the requested format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable, "":
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}
