package components

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Canvas is a fixed-size grid of text lines that blocks are stamped onto.
// Later draws cover earlier ones.
type Canvas struct {
	w, h  int
	lines []string
}

// NewCanvas returns a blank w x h canvas.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{w: max(w, 0), h: max(h, 0)}
	c.lines = make([]string, c.h)
	blank := strings.Repeat(" ", c.w)
	for i := range c.lines {
		c.lines[i] = blank
	}
	return c
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (w, h int) { return c.w, c.h }

// Draw stamps block with its top-left corner at (x, y). Parts outside the
// canvas are clipped.
func (c *Canvas) Draw(x, y int, block []string) {
	for i, line := range block {
		row := y + i
		if row < 0 || row >= c.h {
			continue
		}
		lx := x
		if lx < 0 {
			line = ansi.TruncateLeft(line, -lx, "")
			lx = 0
		}
		if lx >= c.w {
			continue
		}
		bw := VisibleLen(line)
		if lx+bw > c.w {
			line = ansi.Truncate(line, c.w-lx, "")
			bw = c.w - lx
		}
		if bw == 0 {
			continue
		}
		cur := c.lines[row]
		left := ansi.Truncate(cur, lx, "")
		right := ansi.TruncateLeft(cur, lx+bw, "")
		c.lines[row] = left + ansi.ResetStyle + line + ansi.ResetStyle + right
	}
}

// Lines returns the canvas rows.
func (c *Canvas) Lines() []string {
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// String joins the rows with newlines.
func (c *Canvas) String() string {
	return strings.Join(c.lines, "\n")
}
