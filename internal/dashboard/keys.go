package dashboard

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the dashboard's key bindings. It satisfies help.KeyMap.
type keyMap struct {
	Quit        key.Binding
	Help        key.Binding
	FocusTable  key.Binding
	Up          key.Binding
	Down        key.Binding
	ClearAlerts key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		FocusTable:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus table")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		ClearAlerts: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear alerts")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.FocusTable, k.ClearAlerts, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.FocusTable},
		{k.ClearAlerts, k.Help, k.Quit},
	}
}
