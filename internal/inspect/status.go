package inspect

import (
	"fmt"
	"net"
	"strconv"

	"quicktui/internal/registry"
)

// Status is the lifecycle state of one VM as far as quicktui can tell.
type Status int

const (
	StatusUnknown Status = iota
	StatusStopped
	StatusStarting
	StatusRunning
	StatusStopping
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Alive reports whether a VM process (emulator or launcher) is believed to exist.
func (s Status) Alive() bool {
	return s == StatusRunning || s == StatusStarting || s == StatusStopping
}

// MarshalText lets Status render by name in json and yaml output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ConnectionInfo is what a viewer needs to reach a running VM.
type ConnectionInfo struct {
	Protocol registry.Protocol `json:"protocol" yaml:"protocol"`
	Host     string            `json:"host" yaml:"host"`
	Port     int               `json:"port" yaml:"port"`
	// Source names where the port came from: argv, config, ports-file or default.
	Source string `json:"source" yaml:"source"`
}

// LocalHost is the only address viewers are pointed at.
const LocalHost = "127.0.0.1"

// Addr returns host:port.
func (c ConnectionInfo) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the viewer URL, e.g. spice://127.0.0.1:5930.
func (c ConnectionInfo) URL() string {
	return fmt.Sprintf("%s://%s", c.Protocol, c.Addr())
}

// Result is one VM's inspected state.
type Result struct {
	Status Status
	Conn   *ConnectionInfo
	// PIDs are the emulator processes; LauncherPIDs are quickemu launchers still booting the VM.
	PIDs         []int32
	LauncherPIDs []int32
	Err          error
}

// InspectionError reports a failed poll. It degrades the VM to StatusUnknown and is never fatal.
type InspectionError struct {
	VM  string
	Err error
}

func (e *InspectionError) Error() string {
	if e.VM == "" {
		return fmt.Sprintf("inspect process table: %v", e.Err)
	}
	return fmt.Sprintf("inspect %s: %v", e.VM, e.Err)
}

func (e *InspectionError) Unwrap() error { return e.Err }
