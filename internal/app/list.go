package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quicktui/internal/inspect"
	"quicktui/internal/registry"
)

// ListParams defines filters and timeout.
type ListParams struct {
	Filters ListFilters
	Timeout time.Duration
}

// Discover rescans the VM directory.
func (a *App) Discover() ([]registry.Descriptor, error) {
	return a.reg.List()
}

// InspectAll inspects every VM from one process-table snapshot.
func (a *App) InspectAll(ctx context.Context, vms []registry.Descriptor) (map[string]inspect.Result, error) {
	return a.insp.InspectAll(ctx, vms)
}

// List returns the VMs matching the filters with their live status. An empty
// directory yields an empty slice and an error wrapping registry.ErrEmpty.
func (a *App) List(ctx context.Context, params ListParams) ([]VM, error) {
	if params.Timeout <= 0 {
		return nil, errors.New("timeout must be greater than 0")
	}
	if err := params.Filters.validate(); err != nil {
		return nil, err
	}

	descs, err := a.reg.List()
	if err != nil {
		if errors.Is(err, registry.ErrEmpty) {
			return []VM{}, err
		}
		return nil, err
	}
	selected := make([]registry.Descriptor, 0, len(descs))
	for _, d := range descs {
		if params.Filters.selects(d) {
			selected = append(selected, d)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, params.Timeout)
	defer cancel()

	results, err := a.insp.InspectAll(ctx, selected)
	if err != nil {
		a.log.Warn("inspection failed", "err", err)
	}

	out := make([]VM, 0, len(selected))
	for _, d := range selected {
		vm := vmFromResult(d, results[d.ID])
		if params.Filters.AliveOnly && !vm.Status.Alive() {
			continue
		}
		out = append(out, vm)
	}
	return out, nil
}

// Status reports a single VM.
func (a *App) Status(ctx context.Context, id string, timeout time.Duration) (VM, error) {
	if timeout <= 0 {
		return VM{}, errors.New("timeout must be greater than 0")
	}
	d, err := a.reg.Lookup(id)
	if err != nil {
		return VM{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res := a.insp.Inspect(ctx, d)
	if res.Err != nil {
		return vmFromResult(d, res), fmt.Errorf("status %s: %w", id, res.Err)
	}
	return vmFromResult(d, res), nil
}
