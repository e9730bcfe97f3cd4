//go:build !unix

package lifecycle

import (
	"os"
	"os/exec"
)

// No SIGTERM outside unix; the graceful fallback is a kill.
var termSignal os.Signal = os.Kill

func detach(*exec.Cmd) {}
