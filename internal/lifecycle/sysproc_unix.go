//go:build unix

package lifecycle

import (
	"os"
	"os/exec"
	"syscall"
)

var termSignal os.Signal = syscall.SIGTERM

func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
