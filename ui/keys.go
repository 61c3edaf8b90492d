package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Play     key.Binding
	Stop     key.Binding
	Menu     key.Binding
	Primary  key.Binding
	Copy     key.Binding
	Close    key.Binding
	Visible  key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
	menuOpen bool
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Play: key.NewBinding(
			key.WithKeys("enter", "p", " "),
			key.WithHelp("enter/p", "play"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop"),
		),
		Menu: key.NewBinding(
			key.WithKeys("a", "tab"),
			key.WithHelp("a", "audio sources"),
		),
		Primary: key.NewBinding(
			key.WithKeys("s", "*"),
			key.WithHelp("s", "set primary"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y", "c"),
			key.WithHelp("y", "copy url"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close menu"),
		),
		Visible: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "toggle auto-play"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	if k.menuOpen {
		return []key.Binding{k.Play, k.Primary, k.Copy, k.Close}
	}
	return []key.Binding{k.Play, k.Menu, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	if k.menuOpen {
		return [][]key.Binding{
			{k.Up, k.Down, k.Play},
			{k.Primary, k.Copy, k.Close},
		}
	}
	return [][]key.Binding{
		{k.Up, k.Down, k.Play, k.Stop},
		{k.Menu, k.Visible, k.Reload},
		{k.Help, k.Quit},
	}
}
