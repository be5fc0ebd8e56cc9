package viz

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start   key.Binding
	Back    key.Binding
	Forward key.Binding
	Latest  key.Binding
	Hover   key.Binding
	Theme   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start/continue")),
	Back:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "scrub back")),
	Forward: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "scrub forward")),
	Latest:  key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "latest completed")),
	Hover:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "inspect next")),
	Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Back, k.Forward, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Back, k.Forward, k.Latest},
		{k.Hover, k.Theme, k.Help, k.Quit},
	}
}
