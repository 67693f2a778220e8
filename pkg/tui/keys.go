package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap is the dashboard's key bindings. Keys typed into a widget that is
// editing never reach it, except Quit.
type KeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding

	MoveLeft  key.Binding
	MoveRight key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding

	Narrower key.Binding
	Wider    key.Binding
	Shorter  key.Binding
	Taller   key.Binding

	Enter  key.Binding
	Back   key.Binding
	Notes  key.Binding
	Wthr   key.Binding
	Clock  key.Binding
	Delete key.Binding
	Reload key.Binding
	Menu   key.Binding
	Logout key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Prev:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←→↑↓", "focus")),
		Right: key.NewBinding(key.WithKeys("right")),
		Up:    key.NewBinding(key.WithKeys("up")),
		Down:  key.NewBinding(key.WithKeys("down")),

		MoveLeft:  key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("HJKL", "move")),
		MoveRight: key.NewBinding(key.WithKeys("L", "shift+right")),
		MoveUp:    key.NewBinding(key.WithKeys("K", "shift+up")),
		MoveDown:  key.NewBinding(key.WithKeys("J", "shift+down")),

		Narrower: key.NewBinding(key.WithKeys("<", "ctrl+left"), key.WithHelp("<>+-", "resize")),
		Wider:    key.NewBinding(key.WithKeys(">", "ctrl+right")),
		Shorter:  key.NewBinding(key.WithKeys("-", "ctrl+up")),
		Taller:   key.NewBinding(key.WithKeys("+", "=", "ctrl+down")),

		Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Notes:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "add notes")),
		Wthr:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "add weather")),
		Clock:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "add clock")),
		Delete: key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Menu:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
		Logout: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "logout")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Enter, k.Notes, k.Wthr, k.Clock, k.Delete, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Left},
		{k.MoveLeft, k.Narrower, k.Enter, k.Back},
		{k.Notes, k.Wthr, k.Clock, k.Delete},
		{k.Reload, k.Menu, k.Logout, k.Help, k.Quit},
	}
}
