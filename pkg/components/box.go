package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CloseLabel is the delete zone drawn at the right end of a tile's top
// border.
const CloseLabel = "[x]"

type borderChars struct {
	TopLeft, TopRight, BottomLeft, BottomRight string
	Horizontal, Vertical                       string
}

var (
	rounded = borderChars{"╭", "╮", "╰", "╯", "─", "│"}
	dashed  = borderChars{"┌", "┐", "└", "┘", "╌", "╎"}
)

// Box frames a tile. Width and Height are outer dimensions including
// the border.
type Box struct {
	Width  int
	Height int
	Title  string
	// Closable draws CloseLabel at the right end of the top border.
	Closable bool
	// Dashed draws the drag ghost outline instead of the solid frame.
	Dashed bool

	BorderStyle lipgloss.Style
	TitleStyle  lipgloss.Style
	CloseStyle  lipgloss.Style
}

// Inner returns the content area size.
func (b Box) Inner() (w, h int) {
	return max(b.Width-2, 0), max(b.Height-2, 0)
}

// CloseSpan returns the column range [start, end) of the delete zone
// relative to the box's left edge. ok is false when the box is too
// narrow to draw it.
func (b Box) CloseSpan() (start, end int, ok bool) {
	if !b.Closable || b.Width < len(CloseLabel)+4 {
		return 0, 0, false
	}
	end = b.Width - 2
	return end - len(CloseLabel), end, true
}

// Render draws content inside the box and returns exactly Height lines
// of Width cells. Boxes smaller than 2x2 render as blank space.
func (b Box) Render(content []string) []string {
	if b.Width < 2 || b.Height < 2 {
		return Fit(nil, max(b.Width, 0), max(b.Height, 0))
	}
	ch := rounded
	if b.Dashed {
		ch = dashed
	}
	iw, ih := b.Inner()
	out := make([]string, 0, b.Height)
	out = append(out, b.top(ch, iw))

	side := b.BorderStyle.Render(ch.Vertical)
	for _, l := range Fit(content, iw, ih) {
		out = append(out, side+l+side)
	}
	out = append(out, b.BorderStyle.Render(ch.BottomLeft+strings.Repeat(ch.Horizontal, iw)+ch.BottomRight))
	return out
}

// top draws "╭─ Title ──────[x]─╮".
func (b Box) top(ch borderChars, iw int) string {
	var sb strings.Builder
	sb.WriteString(b.BorderStyle.Render(ch.TopLeft))
	used := 0

	closeW := 0
	if _, _, ok := b.CloseSpan(); ok {
		closeW = len(CloseLabel) + 1
	}
	if b.Title != "" && iw-closeW > 4 {
		title := TruncateWithTail(b.Title, iw-closeW-3, "…")
		sb.WriteString(b.BorderStyle.Render(ch.Horizontal))
		sb.WriteString(b.TitleStyle.Render(" " + title + " "))
		used = 1 + VisibleLen(title) + 2
	}
	if fill := iw - used - closeW; fill > 0 {
		sb.WriteString(b.BorderStyle.Render(strings.Repeat(ch.Horizontal, fill)))
	}
	if closeW > 0 {
		sb.WriteString(b.CloseStyle.Render(CloseLabel))
		sb.WriteString(b.BorderStyle.Render(ch.Horizontal))
	}
	sb.WriteString(b.BorderStyle.Render(ch.TopRight))
	return sb.String()
}
