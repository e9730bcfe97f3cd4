package app

import (
	"errors"
	"strings"

	"quicktui/internal/inspect"
	"quicktui/internal/registry"
)

// VM is one registry entry joined with its inspected state.
type VM struct {
	ID          string                  `json:"id" yaml:"id"`
	DisplayName string                  `json:"display_name" yaml:"display_name"`
	ConfigPath  string                  `json:"config_path" yaml:"config_path"`
	Status      inspect.Status          `json:"status" yaml:"status"`
	Conn        *inspect.ConnectionInfo `json:"connection,omitempty" yaml:"connection,omitempty"`
	PIDs        []int32                 `json:"pids,omitempty" yaml:"pids,omitempty"`
	Error       string                  `json:"error,omitempty" yaml:"error,omitempty"`
}

func vmFromResult(d registry.Descriptor, res inspect.Result) VM {
	vm := VM{
		ID:          d.ID,
		DisplayName: d.DisplayName,
		ConfigPath:  d.ConfigPath,
		Status:      res.Status,
		Conn:        res.Conn,
		PIDs:        append(append([]int32(nil), res.PIDs...), res.LauncherPIDs...),
	}
	if res.Err != nil {
		vm.Error = res.Err.Error()
	}
	return vm
}

// ListFilters narrows List output.
type ListFilters struct {
	IDs        []string
	AliveOnly  bool
	TextSearch string
}

func (f ListFilters) validate() error {
	for _, id := range f.IDs {
		if strings.TrimSpace(id) == "" {
			return errors.New("id filters must not be empty")
		}
	}
	return nil
}

func (f ListFilters) selects(d registry.Descriptor) bool {
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if strings.TrimSuffix(strings.TrimSpace(id), ".conf") == d.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.TextSearch)); q != "" {
		if !strings.Contains(strings.ToLower(d.ID), q) && !strings.Contains(strings.ToLower(d.DisplayName), q) {
			return false
		}
	}
	return true
}
