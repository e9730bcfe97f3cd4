package tui

import (
	"fmt"

	"quicktui/internal/inspect"
	"quicktui/internal/registry"
	"quicktui/internal/state"
)

// vmItem adapts a VM and its runtime state to the bubbles list item interface.
type vmItem struct {
	vm    registry.Descriptor
	state state.RuntimeState
}

func (i vmItem) Title() string {
	return fmt.Sprintf("%s %s", glyph(i.state.Status), i.vm.DisplayName)
}

func (i vmItem) Description() string {
	desc := i.state.Status.String()
	if i.state.Optimistic {
		desc += "…"
	}
	if i.state.Conn != nil {
		desc += " · " + i.state.Conn.URL()
	}
	return desc
}

func (i vmItem) FilterValue() string { return i.vm.ID }

func glyph(s inspect.Status) string {
	switch s {
	case inspect.StatusRunning:
		return "●"
	case inspect.StatusStarting, inspect.StatusStopping:
		return "◐"
	case inspect.StatusStopped:
		return "○"
	default:
		return "?"
	}
}
