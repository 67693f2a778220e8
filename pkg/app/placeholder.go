package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Placeholder stands in for a widget whose kind this client does not know.
// It keeps the tile on the grid so its layout survives round trips.
type Placeholder struct {
	id   string
	kind string
	dim  lipgloss.Style
}

// NewPlaceholder returns a placeholder for a tile of the given kind.
func NewPlaceholder(id, kind string) *Placeholder {
	return &Placeholder{
		id:   id,
		kind: kind,
		dim:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
}

func (w *Placeholder) ID() string                   { return w.id }
func (w *Placeholder) Title() string                { return "Unknown" }
func (w *Placeholder) Init() tea.Cmd                { return nil }
func (w *Placeholder) Update(tea.Msg) tea.Cmd       { return nil }
func (w *Placeholder) HandleKey(tea.KeyMsg) tea.Cmd { return nil }
func (w *Placeholder) MinSize() (int, int)          { return 10, 1 }

// View centres a short note about the unsupported kind.
func (w *Placeholder) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	msg := w.dim.Render(fmt.Sprintf("unsupported widget %q", w.kind))
	lines := make([]string, 0, height)
	for i := 0; i < (height-1)/2; i++ {
		lines = append(lines, "")
	}
	lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Center, msg))
	return strings.Join(lines, "\n")
}
