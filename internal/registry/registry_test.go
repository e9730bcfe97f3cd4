package registry

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func ids(vms []Descriptor) []string {
	out := make([]string, 0, len(vms))
	for _, vm := range vms {
		out = append(out, vm.ID)
	}
	return out
}

func TestListSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "vm-b.conf", "")
	touch(t, dir, "vm-a.conf", "")
	touch(t, dir, "notes.txt", "")
	touch(t, dir, "vm-a.conf.bak", "")
	touch(t, dir, ".conf", "")
	if err := os.Mkdir(filepath.Join(dir, "vm-a"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.conf"), 0o755); err != nil {
		t.Fatal(err)
	}

	vms, err := New(dir).List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(vms); !reflect.DeepEqual(got, []string{"vm-a", "vm-b"}) {
		t.Fatalf("unexpected ids %v", got)
	}
	if !filepath.IsAbs(vms[0].ConfigPath) || filepath.Base(vms[0].ConfigPath) != "vm-a.conf" {
		t.Fatalf("unexpected config path %q", vms[0].ConfigPath)
	}
}

func TestListStableAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.conf", "alpha.conf", "mid.conf"} {
		touch(t, dir, name, "")
	}
	reg := New(dir)
	first, err := reg.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := reg.List()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(ids(first), ids(again)) {
			t.Fatalf("order changed: %v vs %v", ids(first), ids(again))
		}
	}
}

func TestListFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := touch(t, t.TempDir(), "real.conf", "")
	if err := os.Symlink(target, filepath.Join(dir, "linked.conf")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	vms, err := New(dir).List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(vms); !reflect.DeepEqual(got, []string{"linked"}) {
		t.Fatalf("unexpected ids %v", got)
	}
}

func TestListEmptyDir(t *testing.T) {
	vms, err := New(t.TempDir()).List()
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if vms == nil || len(vms) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", vms)
	}
}

func TestListMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing")).List()
	if !errors.Is(err, ErrConfigDirUnavailable) {
		t.Fatalf("expected ErrConfigDirUnavailable, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped os error, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "windows_11.conf", "")
	reg := New(dir)

	vm, err := reg.Lookup("windows_11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vm.DisplayName != "windows 11" {
		t.Fatalf("unexpected display name %q", vm.DisplayName)
	}
	if _, err := reg.Lookup("windows_11.conf"); err != nil {
		t.Fatalf("expected .conf suffix to be accepted, got %v", err)
	}
	if _, err := reg.Lookup("windows"); !errors.Is(err, ErrUnknownVM) {
		t.Fatalf("expected ErrUnknownVM, got %v", err)
	}
	if _, err := reg.Lookup("../etc"); err == nil {
		t.Fatal("expected path-like id to be rejected")
	}
	if _, err := reg.Lookup("  "); !errors.Is(err, ErrUnknownVM) {
		t.Fatalf("expected ErrUnknownVM for empty id, got %v", err)
	}
}
