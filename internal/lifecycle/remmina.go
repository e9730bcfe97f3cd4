package lifecycle

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// remminaProfile returns the Remmina profile for a VM, or "".
// An entry in overrides wins. Otherwise dir is scanned for *.remmina files whose
// stem contains the id: a single match is used, several prefer an exact stem
// and then the first by name.
func remminaProfile(dir, id string, overrides map[string]string) string {
	key := strings.ToLower(id)
	if p, ok := overrides[key]; ok && p != "" {
		return p
	}
	if dir == "" {
		return ""
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var matches []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.EqualFold(filepath.Ext(e.Name()), ".remmina") {
			continue
		}
		stem := strings.ToLower(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if stem == key {
			return filepath.Join(dir, e.Name())
		}
		if strings.Contains(stem, key) {
			matches = append(matches, e.Name())
		}
	}
	if len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return filepath.Join(dir, matches[0])
}
