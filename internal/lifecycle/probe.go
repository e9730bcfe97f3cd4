package lifecycle

import (
	"context"
	"net"
	"time"
)

const probeTimeout = 200 * time.Millisecond

// portOpen reports whether something accepts TCP connections on addr.
func portOpen(ctx context.Context, addr string) bool {
	d := net.Dialer{Timeout: probeTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
