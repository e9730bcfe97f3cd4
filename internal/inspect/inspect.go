// Package inspect decides whether a VM is running by matching the host
// process table against quickemu's process-naming conventions.
package inspect

import (
	"context"
	"path/filepath"

	"quicktui/internal/registry"
)

// Options configures an Inspector.
type Options struct {
	// Source defaults to the live process table.
	Source ProcessSource
	// Launcher is the configured launcher executable, used to recognise booting VMs.
	Launcher string
	// RuntimeRoot is the quickemu directory; per-VM artifacts live in RuntimeRoot/<id>.
	RuntimeRoot string
}

// Inspector answers liveness questions from one process-table snapshot per call.
type Inspector struct {
	source      ProcessSource
	launcher    string
	runtimeRoot string
	readHints   func(string) (registry.Hints, error)
}

// New builds an Inspector.
func New(opts Options) *Inspector {
	src := opts.Source
	if src == nil {
		src = SystemSource{}
	}
	return &Inspector{
		source:      src,
		launcher:    launcherBase(opts.Launcher),
		runtimeRoot: opts.RuntimeRoot,
		readHints:   registry.ReadHints,
	}
}

// Inspect reports the state of a single VM.
func (i *Inspector) Inspect(ctx context.Context, vm registry.Descriptor) Result {
	results, _ := i.InspectAll(ctx, []registry.Descriptor{vm})
	return results[vm.ID]
}

// InspectAll reports every VM from a single snapshot. When the snapshot fails every
// VM is returned as StatusUnknown carrying an *InspectionError, and that error is returned too.
func (i *Inspector) InspectAll(ctx context.Context, vms []registry.Descriptor) (map[string]Result, error) {
	out := make(map[string]Result, len(vms))

	snap, err := i.source.Snapshot(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		for _, vm := range vms {
			out[vm.ID] = Result{Status: StatusUnknown, Err: &InspectionError{VM: vm.ID, Err: err}}
		}
		return out, &InspectionError{Err: err}
	}

	for _, vm := range vms {
		out[vm.ID] = i.evaluate(vm, snap)
	}
	return out, nil
}

func (i *Inspector) evaluate(vm registry.Descriptor, snap []Proc) Result {
	emu, boot := match(vm.ID, i.launcher, snap)
	res := Result{
		Status:       StatusStopped,
		PIDs:         pidsOf(emu),
		LauncherPIDs: pidsOf(boot),
	}
	switch {
	case len(emu) > 0:
		res.Status = StatusRunning
		res.Conn = i.connection(vm, emu[0].Args)
	case len(boot) > 0:
		res.Status = StatusStarting
	}
	return res
}

// connection resolves connection details for a running VM, most specific source first.
// A nil result is not an error: callers may still fall back to a default port.
func (i *Inspector) connection(vm registry.Descriptor, args []string) *ConnectionInfo {
	if proto, port, ok := registry.RemoteFromForwards(hostForwards(args)); ok {
		return &ConnectionInfo{Protocol: proto, Host: LocalHost, Port: port, Source: "argv"}
	}
	if vm.ConfigPath != "" {
		if hints, err := i.readHints(vm.ConfigPath); err == nil {
			if proto, port, ok := hints.Remote(); ok {
				return &ConnectionInfo{Protocol: proto, Host: LocalHost, Port: port, Source: "config"}
			}
		}
	}
	if c := displayFromArgs(args); c != nil {
		return c
	}
	if i.runtimeRoot != "" {
		return connectionFromPortsFile(filepath.Join(i.runtimeRoot, vm.ID), vm.ID)
	}
	return nil
}
