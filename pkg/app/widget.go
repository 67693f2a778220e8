package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/tileboard/pkg/dashboard"
)

// Widget is one tile's content. The shell owns the frame around it and
// passes the inner size to View.
type Widget interface {
	ID() string
	Title() string
	Init() tea.Cmd
	// Update receives every non-key message; widgets ignore what is not
	// addressed to them.
	Update(msg tea.Msg) tea.Cmd
	// HandleKey receives keys while the widget is focused.
	HandleKey(msg tea.KeyMsg) tea.Cmd
	View(width, height int) string
	MinSize() (w, h int)
}

// Focusable widgets track focus and may capture the keyboard.
type Focusable interface {
	SetFocused(focused bool) tea.Cmd
	// Editing reports whether keys belong to the widget rather than the
	// grid, e.g. while a text field has the cursor.
	Editing() bool
}

// Closer widgets release tick chains when their tile is removed.
type Closer interface {
	Close()
}

// Configurable widgets accept a config pushed from outside, such as a
// reload or another client's edit.
type Configurable interface {
	SetConfig(cfg dashboard.Config) tea.Cmd
}

// Editing reports whether w is currently capturing keys.
func Editing(w Widget) bool {
	f, ok := w.(Focusable)
	return ok && f.Editing()
}

// Close releases w if it holds resources.
func Close(w Widget) {
	if c, ok := w.(Closer); ok {
		c.Close()
	}
}
