package registry

// Descriptor identifies one manageable VM. It is immutable once returned by List.
type Descriptor struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	ConfigPath  string `json:"config_path" yaml:"config_path"`
}

// Protocol is the remote display protocol a VM is reached with.
type Protocol string

const (
	ProtocolSpice Protocol = "spice"
	ProtocolRDP   Protocol = "rdp"
	ProtocolVNC   Protocol = "vnc"
)

// Well-known guest ports that select RDP or VNC over SPICE.
const (
	GuestPortRDP = 3389
	GuestPortVNC = 5900
)

// Forward is one host:guest TCP port forward declared in a VM config.
type Forward struct {
	HostPort  int `json:"host_port" yaml:"host_port"`
	GuestPort int `json:"guest_port" yaml:"guest_port"`
}

// Hints is the little a VM config tells us about how to reach the guest.
type Hints struct {
	Forwards []Forward
}

// Remote reports the first forward to a remote-desktop guest port.
// ok is false when the VM should be reached over SPICE.
func (h Hints) Remote() (proto Protocol, hostPort int, ok bool) {
	return RemoteFromForwards(h.Forwards)
}

// RemoteFromForwards picks RDP or VNC from a forward list, first match wins.
func RemoteFromForwards(fwds []Forward) (Protocol, int, bool) {
	for _, f := range fwds {
		switch f.GuestPort {
		case GuestPortRDP:
			return ProtocolRDP, f.HostPort, true
		case GuestPortVNC:
			return ProtocolVNC, f.HostPort, true
		}
	}
	return ProtocolSpice, 0, false
}
