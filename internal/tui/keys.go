// internal/tui/keys.go
package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the trainer key bindings with built-in help text.
type KeyMap struct {
	Tap      key.Binding
	Dot      key.Binding
	Dash     key.Binding
	Clear    key.Binding
	Settings key.Binding
	Quit     key.Binding

	// Settings form
	Next   key.Binding
	Save   key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tap: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "press/release"),
		),
		Dot: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", "dot"),
		),
		Dash: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "dash"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "shift+tab", "up", "down"),
			key.WithHelp("tab", "next field"),
		),
		Save: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tap, k.Dot, k.Dash, k.Clear, k.Settings, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), k.formHelp()}
}

func (k KeyMap) formHelp() []key.Binding {
	return []key.Binding{k.Next, k.Save, k.Cancel}
}

// formKeys shows only the form bindings in the help line.
type formKeys struct{ KeyMap }

func (f formKeys) ShortHelp() []key.Binding { return f.formHelp() }
