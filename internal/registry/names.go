package registry

import (
	"fmt"
	"strings"
)

const maxIDLen = 128

// validateID rejects identifiers that cannot name a config file in the VM directory.
func validateID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("%w: empty id", ErrUnknownVM)
	}
	if len(id) > maxIDLen {
		return "", fmt.Errorf("vm id %q is too long (max %d characters)", id, maxIDLen)
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("vm id %q must be a bare name, not a path", id)
	}
	return strings.TrimSuffix(id, configExt), nil
}

// displayName turns an id such as "windows_11" into "windows 11".
func displayName(id string) string {
	name := strings.TrimSpace(strings.ReplaceAll(id, "_", " "))
	if name == "" {
		return id
	}
	return name
}
