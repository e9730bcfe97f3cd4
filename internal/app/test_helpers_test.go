package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"quicktui/internal/config"
	"quicktui/internal/inspect"
	"quicktui/internal/lifecycle"
)

type fakeSource struct {
	procs []inspect.Proc
	err   error
}

func (f fakeSource) Snapshot(context.Context) ([]inspect.Proc, error) {
	return f.procs, f.err
}

type recordingSpawner struct {
	mu   sync.Mutex
	cmds []lifecycle.Command
}

func (r *recordingSpawner) Spawn(_ context.Context, cmd lifecycle.Command) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
	return 100 + len(r.cmds), nil
}

type nopMonitor struct{}

func (nopMonitor) Powerdown(context.Context, string) error { return nil }

func stubDeps(t *testing.T, src inspect.ProcessSource) *recordingSpawner {
	t.Helper()
	resetDeps()
	spawner := &recordingSpawner{}
	newProcessSource = func() inspect.ProcessSource { return src }
	newSpawner = func(*log.Logger) lifecycle.Spawner { return spawner }
	newMonitor = func() lifecycle.Monitor { return nopMonitor{} }
	t.Cleanup(resetDeps)
	return spawner
}

func vmDir(t *testing.T, ids ...string) config.Config {
	t.Helper()
	dir := t.TempDir()
	for _, id := range ids {
		if err := os.WriteFile(filepath.Join(dir, id+".conf"), []byte("guest_os=\"linux\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.Default()
	cfg.QuickemuDir = dir
	cfg.Launcher = "quickemu"
	cfg.OSType = "linux"
	cfg.RemminaDir = ""
	return cfg
}

func qemu(id string) inspect.Proc {
	return inspect.Proc{PID: 4000, Args: []string{"qemu-system-x86_64", "-name", id + ",process=" + id, "-spice", "port=5930"}}
}
