package lifecycle

import "errors"

var (
	// ErrAlreadyRunning is returned by Start when the VM has a live emulator or launcher.
	ErrAlreadyRunning = errors.New("vm is already running")
	// ErrNotRunning is returned by Stop and Connect when no emulator is running.
	ErrNotRunning = errors.New("vm is not running")
	// ErrNoConnectionInfo means the VM runs but exposes no port and no default is configured.
	ErrNoConnectionInfo = errors.New("no connection info for vm")
	// ErrBootTimeout is returned by StartAndConnect when the VM never became reachable.
	ErrBootTimeout = errors.New("vm did not become reachable before boot timeout")
	// ErrExternalSpawnFailed wraps launcher and viewer spawn failures.
	ErrExternalSpawnFailed = errors.New("external process spawn failed")
)
