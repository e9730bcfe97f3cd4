package lifecycle

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// Command is an external program invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env entries are appended to the current environment.
	Env []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Spawner starts detached external programs.
type Spawner interface {
	Spawn(ctx context.Context, cmd Command) (int, error)
}

// ExecSpawner starts children in their own process group with null stdio and
// reaps them in the background. It never waits for a child to finish.
type ExecSpawner struct {
	Logger *log.Logger
}

// Spawn starts cmd and returns its PID.
func (s ExecSpawner) Spawn(_ context.Context, c Command) (int, error) {
	// Children must outlive the action that started them, so no CommandContext.
	child := exec.Command(c.Name, c.Args...)
	child.Dir = c.Dir
	if len(c.Env) > 0 {
		child.Env = append(os.Environ(), c.Env...)
	}
	detach(child)

	if err := child.Start(); err != nil {
		return 0, err
	}
	pid := child.Process.Pid

	go func() {
		err := child.Wait()
		if s.Logger != nil {
			s.Logger.Debug("child exited", "pid", pid, "cmd", c.Name, "err", err)
		}
	}()
	return pid, nil
}
