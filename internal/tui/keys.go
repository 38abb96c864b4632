package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Enter   key.Binding
	Submit  key.Binding
	Field   key.Binding
	Reset   key.Binding
	Switch  key.Binding
	Dismiss key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next:    key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab/↓", "next field")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab/↑", "prev field")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next/submit")),
		Submit:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		Field:   key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "search field")),
		Reset:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset")),
		Switch:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "switch screen")),
		Dismiss: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "dismiss toast")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// helpKeys adapts a screen's bindings plus the global ones to help.KeyMap.
type helpKeys struct {
	screen []key.Binding
	global []key.Binding
}

func (h helpKeys) ShortHelp() []key.Binding {
	out := make([]key.Binding, 0, len(h.screen)+len(h.global))
	out = append(out, h.screen...)
	return append(out, h.global...)
}

func (h helpKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.screen, h.global}
}
