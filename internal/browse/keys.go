package browse

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextCategory key.Binding
	PrevCategory key.Binding
	NextFilter   key.Binding
	PrevFilter   key.Binding
	Up           key.Binding
	Down         key.Binding
	Retry        key.Binding
	Open         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextCategory: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next category")),
		PrevCategory: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev category")),
		NextFilter:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next filter")),
		PrevFilter:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev filter")),
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Retry:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Open:         key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o", "open")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.NextCategory, k.NextFilter, k.Down, k.Open, k.Retry, k.Quit}
}
