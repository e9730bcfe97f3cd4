package lifecycle

import (
	"context"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"time"
)

const monitorTimeout = 2 * time.Second

// Monitor asks a running guest to shut down.
type Monitor interface {
	Powerdown(ctx context.Context, socket string) error
}

// HMPMonitor talks to the human monitor socket quickemu creates for every VM.
type HMPMonitor struct {
	Timeout time.Duration
}

// Powerdown sends system_powerdown, the ACPI power button.
func (m HMPMonitor) Powerdown(ctx context.Context, socket string) error {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = monitorTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "unix", socket)
	if err != nil {
		return fmt.Errorf("dial monitor: %w", err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := io.WriteString(conn, "system_powerdown\n"); err != nil {
		return fmt.Errorf("send system_powerdown: %w", err)
	}
	return nil
}

// monitorSocket is <root>/<id>/<id>-monitor.socket.
func monitorSocket(root, id string) string {
	return filepath.Join(root, id, id+"-monitor.socket")
}
