package app

import (
	"github.com/charmbracelet/log"

	"quicktui/internal/inspect"
	"quicktui/internal/lifecycle"
)

var (
	newProcessSource = func() inspect.ProcessSource { return inspect.SystemSource{} }
	newSpawner       = func(logger *log.Logger) lifecycle.Spawner { return lifecycle.ExecSpawner{Logger: logger} }
	newMonitor       = func() lifecycle.Monitor { return lifecycle.HMPMonitor{} }
)

func resetDeps() {
	newProcessSource = func() inspect.ProcessSource { return inspect.SystemSource{} }
	newSpawner = func(logger *log.Logger) lifecycle.Spawner { return lifecycle.ExecSpawner{Logger: logger} }
	newMonitor = func() lifecycle.Monitor { return lifecycle.HMPMonitor{} }
}
