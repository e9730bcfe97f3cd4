package inspect

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"
)

// Proc is one entry of a process-table snapshot.
type Proc struct {
	PID  int32
	Args []string
}

// ProcessSource takes a snapshot of the host process table.
type ProcessSource interface {
	Snapshot(ctx context.Context) ([]Proc, error)
}

// SystemSource reads the live process table through gopsutil.
type SystemSource struct{}

// Snapshot lists every process whose command line is readable. Processes that
// exit mid-scan or hide their cmdline (kernel threads, other users) are skipped.
func (SystemSource) Snapshot(ctx context.Context) ([]Proc, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Proc, 0, len(procs))
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		args, err := p.CmdlineSliceWithContext(ctx)
		if err != nil || len(args) == 0 {
			continue
		}
		out = append(out, Proc{PID: p.Pid, Args: args})
	}
	return out, nil
}
