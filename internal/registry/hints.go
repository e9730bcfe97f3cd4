package registry

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadHints extracts connection hints from a quickemu config. Only the
// port_forwards line is read; everything else belongs to the launcher.
func ReadHints(path string) (Hints, error) {
	f, err := os.Open(path)
	if err != nil {
		return Hints{}, fmt.Errorf("read hints: %w", err)
	}
	defer f.Close()

	var hints Hints
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") || !strings.HasPrefix(line, "port_forwards") {
			continue
		}
		hints.Forwards = append(hints.Forwards, ParseForwards(line)...)
	}
	if err := sc.Err(); err != nil {
		return hints, fmt.Errorf("read hints: %w", err)
	}
	return hints, nil
}

// ParseForwards parses a line like port_forwards=("8022:22" "3390:3389").
func ParseForwards(line string) []Forward {
	start := strings.Index(line, "(")
	end := strings.LastIndex(line, ")")
	if start < 0 || end <= start {
		return nil
	}
	fields := strings.FieldsFunc(line[start+1:end], func(r rune) bool {
		return r == '"' || r == '\'' || r == ' ' || r == '\t'
	})

	var out []Forward
	for _, field := range fields {
		host, guest, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		hp, err1 := strconv.Atoi(host)
		gp, err2 := strconv.Atoi(guest)
		if err1 != nil || err2 != nil || !validPort(hp) || !validPort(gp) {
			continue
		}
		out = append(out, Forward{HostPort: hp, GuestPort: gp})
	}
	return out
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}
