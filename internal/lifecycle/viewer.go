package lifecycle

import (
	"fmt"
	"strconv"
	"strings"

	"quicktui/internal/inspect"
	"quicktui/internal/registry"
)

type viewerRequest struct {
	OSType    string
	RemoteApp string
	// Profile is a Remmina profile; used first on linux unless SPICE is forced.
	Profile string
	Title   string
	Conn    inspect.ConnectionInfo
	// Display is set as DISPLAY for X11 viewers when the session has none.
	Display string
}

// viewerCandidates lists the viewers that can reach the VM, most preferred first.
func viewerCandidates(req viewerRequest) []Command {
	url := req.Conn.URL()
	addr := req.Conn.Addr()

	switch req.OSType {
	case "macos":
		return []Command{{Name: "open", Args: []string{url}}}

	case "windows":
		switch req.Conn.Protocol {
		case registry.ProtocolRDP:
			return []Command{{Name: "mstsc", Args: []string{"/v:" + addr}}}
		case registry.ProtocolVNC:
			return []Command{
				{Name: "tvnviewer", Args: []string{addr}},
				{Name: "vncviewer", Args: []string{addr}},
			}
		default:
			return []Command{
				{Name: "remote-viewer", Args: []string{url}},
				{Name: "virt-viewer", Args: []string{url}},
			}
		}
	}

	var env []string
	if req.Display != "" {
		env = []string{"DISPLAY=" + req.Display}
	}
	var out []Command
	if req.Profile != "" {
		out = append(out, Command{Name: req.RemoteApp, Args: []string{"-c", req.Profile}, Env: env})
	}
	proto := string(req.Conn.Protocol)
	out = append(out, Command{Name: req.RemoteApp, Args: []string{"--quiet", "-p", proto, url}, Env: env})

	switch req.Conn.Protocol {
	case registry.ProtocolRDP:
		out = append(out, Command{Name: "xfreerdp", Args: []string{"/v:" + addr, "/f", "/dynamic-resolution"}, Env: env})
	case registry.ProtocolVNC:
		out = append(out, Command{Name: "vncviewer", Args: []string{addr}, Env: env})
	default:
		out = append(out,
			Command{Name: "spicy", Args: []string{"--title", req.Title, "-h", req.Conn.Host, "-p", strconv.Itoa(req.Conn.Port)}, Env: env},
			Command{Name: "remote-viewer", Args: []string{url}, Env: env},
		)
	}
	return out
}

// pickViewer returns the first candidate that resolves on PATH.
func pickViewer(cands []Command, lookPath func(string) (string, error)) (Command, error) {
	tried := make([]string, 0, len(cands))
	for _, c := range cands {
		if c.Name == "" {
			continue
		}
		if _, err := lookPath(c.Name); err == nil {
			return c, nil
		}
		tried = append(tried, c.Name)
	}
	return Command{}, fmt.Errorf("%w: no viewer found (tried %s)", ErrExternalSpawnFailed, strings.Join(dedupe(tried), ", "))
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
