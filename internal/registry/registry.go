package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const configExt = ".conf"

var (
	// ErrConfigDirUnavailable means the VM directory could not be read at all.
	ErrConfigDirUnavailable = errors.New("vm config directory unavailable")
	// ErrEmpty is reported alongside an empty list; callers usually render it rather than fail.
	ErrEmpty = errors.New("no vm configurations found")
	// ErrUnknownVM is returned by Lookup for ids with no config file.
	ErrUnknownVM = errors.New("unknown vm")
)

// Registry enumerates VM configurations in a quickemu directory.
// Every call rescans the directory; nothing is cached.
type Registry struct {
	dir string
}

// New returns a registry rooted at dir.
func New(dir string) *Registry {
	return &Registry{dir: dir}
}

// Dir returns the scanned directory.
func (r *Registry) Dir() string {
	return r.dir
}

// List returns all VMs sorted by id. An empty directory yields an empty slice and ErrEmpty.
func (r *Registry) List() ([]Descriptor, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigDirUnavailable, err)
	}

	out := make([]Descriptor, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, configExt) {
			continue
		}
		id := strings.TrimSuffix(name, configExt)
		if id == "" {
			continue
		}
		path := filepath.Join(r.dir, name)
		if !isFile(entry, path) {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		out = append(out, Descriptor{
			ID:          id,
			DisplayName: displayName(id),
			ConfigPath:  abs,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) == 0 {
		return out, fmt.Errorf("%w in %s", ErrEmpty, r.dir)
	}
	return out, nil
}

// Lookup rescans and returns the descriptor for id.
func (r *Registry) Lookup(id string) (Descriptor, error) {
	clean, err := validateID(id)
	if err != nil {
		return Descriptor{}, err
	}
	vms, err := r.List()
	if err != nil && !errors.Is(err, ErrEmpty) {
		return Descriptor{}, err
	}
	for _, vm := range vms {
		if vm.ID == clean {
			return vm, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w %q in %s", ErrUnknownVM, clean, r.dir)
}

func isFile(entry os.DirEntry, path string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
