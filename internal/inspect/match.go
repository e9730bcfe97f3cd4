package inspect

import (
	"path/filepath"
	"sort"
	"strings"
)

const defaultLauncherName = "quickemu"

// Matching rules, in full:
//
//  1. Emulator: argv[0]'s base name starts with "qemu" and argv holds "-name V"
//     where the first comma field of V equals id, or V carries "process=<id>"
//     or "guest=<id>". quickemu launches QEMU with "-name <vm>,process=<vm>".
//  2. Launcher: argv holds an element whose base name is the launcher
//     (quickemu, with any .exe dropped), later followed by "--vm P" where
//     base(P) is exactly "<id>.conf", and argv holds no "--kill".
//
// Comparisons are exact; "vm-a" never matches "vm-ab".

// CandidateProcesses returns the sorted PIDs of every emulator and launcher bound to id.
// launcher is the configured launcher executable; empty means quickemu.
func CandidateProcesses(id, launcher string, snap []Proc) []int32 {
	emu, boot := match(id, launcherBase(launcher), snap)
	pids := append(pidsOf(emu), pidsOf(boot)...)
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}

func match(id, launcher string, snap []Proc) (emulators, launchers []Proc) {
	if id == "" {
		return nil, nil
	}
	for _, p := range snap {
		switch {
		case isEmulatorFor(id, p.Args):
			emulators = append(emulators, p)
		case isLauncherFor(id, launcher, p.Args):
			launchers = append(launchers, p)
		}
	}
	return emulators, launchers
}

func isEmulatorFor(id string, args []string) bool {
	if len(args) == 0 || !strings.HasPrefix(exeBase(args[0]), "qemu") {
		return false
	}
	for i := 1; i < len(args)-1; i++ {
		if args[i] != "-name" {
			continue
		}
		fields := strings.Split(args[i+1], ",")
		if fields[0] == id || fields[0] == "guest="+id {
			return true
		}
		for _, f := range fields[1:] {
			if f == "process="+id || f == "guest="+id {
				return true
			}
		}
	}
	return false
}

func isLauncherFor(id, launcher string, args []string) bool {
	want := id + ".conf"
	seenLauncher := false
	found := false
	for i, a := range args {
		switch {
		case a == "--kill":
			return false
		case exeBase(a) == launcher:
			seenLauncher = true
		case a == "--vm" && seenLauncher && i+1 < len(args):
			if filepath.Base(args[i+1]) == want {
				found = true
			}
		}
	}
	return found
}

func exeBase(path string) string {
	base := filepath.Base(strings.ReplaceAll(path, `\`, "/"))
	return strings.TrimSuffix(strings.ToLower(base), ".exe")
}

func launcherBase(launcher string) string {
	if strings.TrimSpace(launcher) == "" {
		return defaultLauncherName
	}
	return exeBase(launcher)
}

func pidsOf(procs []Proc) []int32 {
	out := make([]int32, 0, len(procs))
	for _, p := range procs {
		out = append(out, p.PID)
	}
	return out
}
