package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	Start        key.Binding
	StartConnect key.Binding
	Connect      key.Binding
	Spice        key.Binding
	Stop         key.Binding
	ForceStop    key.Binding
	Refresh      key.Binding
	Cancel       key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Start:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run")),
		StartConnect: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run & connect")),
		Connect:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "connect")),
		Spice:        key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "spice")),
		Stop:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		ForceStop:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "force stop")),
		Refresh:      key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "rescan")),
		Cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.StartConnect, k.Connect, k.Stop, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Refresh},
		{k.Start, k.StartConnect, k.Connect, k.Spice},
		{k.Stop, k.ForceStop, k.Cancel},
		{k.Help, k.Quit},
	}
}
