package inspect

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"quicktui/internal/registry"
)

// displayFromArgs pulls a SPICE or VNC listen port out of an emulator argv.
func displayFromArgs(args []string) *ConnectionInfo {
	for i := 0; i < len(args)-1; i++ {
		switch args[i] {
		case "-spice":
			if port := optionInt(args[i+1], "port"); port > 0 {
				return &ConnectionInfo{Protocol: registry.ProtocolSpice, Host: LocalHost, Port: port, Source: "argv"}
			}
		case "-vnc":
			if display, ok := vncDisplay(args[i+1]); ok {
				return &ConnectionInfo{Protocol: registry.ProtocolVNC, Host: LocalHost, Port: 5900 + display, Source: "argv"}
			}
		}
	}
	return nil
}

// hostForwards parses every hostfwd=tcp:[addr]:H-[addr]:G in the argv.
func hostForwards(args []string) []registry.Forward {
	var out []registry.Forward
	for _, arg := range args {
		if !strings.Contains(arg, "hostfwd=") {
			continue
		}
		for _, field := range strings.Split(arg, ",") {
			rule, ok := strings.CutPrefix(field, "hostfwd=")
			if !ok {
				continue
			}
			host, guest, ok := strings.Cut(rule, "-")
			if !ok {
				continue
			}
			hp := lastPort(host)
			gp := lastPort(guest)
			if hp > 0 && gp > 0 {
				out = append(out, registry.Forward{HostPort: hp, GuestPort: gp})
			}
		}
	}
	return out
}

func lastPort(s string) int {
	idx := strings.LastIndex(s, ":")
	n, err := strconv.Atoi(s[idx+1:])
	if err != nil || n <= 0 || n > 65535 {
		return 0
	}
	return n
}

// optionInt reads key=N from a QEMU comma option list.
func optionInt(opts, key string) int {
	for _, field := range strings.Split(opts, ",") {
		if v, ok := strings.CutPrefix(field, key+"="); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 65535 {
				return n
			}
		}
	}
	return 0
}

// vncDisplay parses "[host]:N[,opts]" into display N.
func vncDisplay(opt string) (int, bool) {
	addr, _, _ := strings.Cut(opt, ",")
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(addr[idx+1:])
	if err != nil || n < 0 || n > 65535-5900 {
		return 0, false
	}
	return n, true
}

// connectionFromPortsFile reads the "<id>.ports" file quickemu writes next to the disk image.
func connectionFromPortsFile(runtimeDir, id string) *ConnectionInfo {
	f, err := os.Open(filepath.Join(runtimeDir, id+".ports"))
	if err != nil {
		return nil
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), ",")
		if !ok || strings.TrimSpace(name) != string(registry.ProtocolSpice) {
			continue
		}
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err == nil && port > 0 && port <= 65535 {
			return &ConnectionInfo{Protocol: registry.ProtocolSpice, Host: LocalHost, Port: port, Source: "ports-file"}
		}
	}
	return nil
}
