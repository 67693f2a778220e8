// Package layout divides terminal areas: the stacked regions of a screen
// (header, banners, body, footer) and the equal-width column tracks the
// tile grid is drawn on.
//
// Split gives fixed Length items their size first, then shares the rest
// among Fill items by weight. Rounding leftovers go to the earliest Fill
// items so the outputs always tile the input exactly.
package layout

// Rect is a rectangular area in terminal cells.
type Rect struct {
	X, Y, Width, Height int
}

// Empty returns true if this rectangle has zero area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right returns the X coordinate of the right edge (exclusive).
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the Y coordinate of the bottom edge (exclusive).
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains returns true if the point (px, py) lies within this rectangle.
func (r Rect) Contains(px, py int) bool {
	return px >= r.X && px < r.Right() && py >= r.Y && py < r.Bottom()
}

// Direction controls the axis along which a Layout splits space.
type Direction int

const (
	// Horizontal splits left-to-right (constraints control width).
	Horizontal Direction = iota
	// Vertical splits top-to-bottom (constraints control height).
	Vertical
)

// Constraint is satisfied by Length and Fill.
type Constraint interface {
	constraint()
}

// Length allocates exactly Value cells. Zero-length items are allowed and
// take no space.
type Length struct{ Value int }

func (Length) constraint() {}

// Fill distributes remaining space proportional to Weight.
// A Weight of 0 is treated as 1.
type Fill struct{ Weight int }

func (Fill) constraint() {}

// Layout splits a Rect into sub-regions according to constraints.
type Layout struct {
	direction   Direction
	constraints []Constraint
}

// NewLayout creates a Layout with the given direction and constraints.
func NewLayout(dir Direction, constraints ...Constraint) *Layout {
	return &Layout{direction: dir, constraints: constraints}
}

// Split divides area into len(constraints) non-overlapping Rects.
func (l *Layout) Split(area Rect) []Rect {
	n := len(l.constraints)
	if n == 0 {
		return nil
	}
	total := area.Width
	if l.direction == Vertical {
		total = area.Height
	}
	sizes := Sizes(total, 0, l.constraints...)

	out := make([]Rect, n)
	pos := 0
	for i, s := range sizes {
		if l.direction == Horizontal {
			out[i] = Rect{X: area.X + pos, Y: area.Y, Width: s, Height: area.Height}
		} else {
			out[i] = Rect{X: area.X, Y: area.Y + pos, Width: area.Width, Height: s}
		}
		pos += s
	}
	return out
}

// Sizes solves the constraints along one axis of total cells with spacing
// between items and returns one size per constraint.
func Sizes(total, spacing int, constraints ...Constraint) []int {
	n := len(constraints)
	sizes := make([]int, n)
	if n == 0 {
		return sizes
	}
	available := nonNeg(total - spacing*(n-1))

	weights := make([]int, n)
	totalWeight := 0
	used := 0
	for i, c := range constraints {
		switch v := c.(type) {
		case Length:
			sizes[i] = nonNeg(v.Value)
		case Fill:
			weights[i] = max(v.Weight, 1)
		}
		used += sizes[i]
		totalWeight += weights[i]
	}

	if remaining := available - used; remaining > 0 && totalWeight > 0 {
		given := 0
		for i := range sizes {
			share := remaining * weights[i] / totalWeight
			sizes[i] += share
			given += share
		}
		for i := 0; given < remaining; i = (i + 1) % n {
			if weights[i] > 0 {
				sizes[i]++
				given++
			}
		}
	}

	// Overcommitted fixed sizes shrink from the end.
	over := used - available
	for i := n - 1; over > 0 && i >= 0; i-- {
		cut := min(sizes[i], over)
		sizes[i] -= cut
		over -= cut
	}
	return sizes
}

// Tracks splits total cells into n equal columns separated by gap cells and
// returns each column's offset and width. Any remainder widens the leading
// columns by one cell each.
func Tracks(total, n, gap int) (offsets, widths []int) {
	if n <= 0 {
		return nil, nil
	}
	cs := make([]Constraint, n)
	for i := range cs {
		cs[i] = Fill{1}
	}
	widths = Sizes(total, gap, cs...)
	offsets = make([]int, n)
	pos := 0
	for i, w := range widths {
		offsets[i] = pos
		pos += w + gap
	}
	return offsets, widths
}

// Span returns the cell offset and width covered by grid columns
// [col, col+span) given the tracks from Tracks, including inner gaps.
func Span(offsets, widths []int, col, span int) (x, w int) {
	if len(offsets) == 0 || span <= 0 {
		return 0, 0
	}
	col = clamp(col, 0, len(offsets)-1)
	last := clamp(col+span-1, col, len(offsets)-1)
	x = offsets[col]
	return x, offsets[last] + widths[last] - x
}

func nonNeg(v int) int {
	return max(v, 0)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
