package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Exec  key.Binding
	Back  key.Binding
	Debug key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Up:    key.NewBinding(key.WithKeys("up", "ctrl+p", "shift+tab"), key.WithHelp("↑", "up")),
	Down:  key.NewBinding(key.WithKeys("down", "ctrl+n", "tab"), key.WithHelp("↓", "down")),
	Exec:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
	Back:  key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "home")),
	Debug: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("^d", "debug")),
	Quit:  key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "close")),
}

// hints renders the status bar key help.
func (k keyMap) hints() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Exec, k.Debug, k.Quit}
}
