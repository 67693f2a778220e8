package grid

// Rect is one tile's position and size inside a breakpoint's grid. I is
// the owning widget's id.
type Rect struct {
	I    string `json:"i"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
	MinW int    `json:"minW,omitempty"`
	MinH int    `json:"minH,omitempty"`
}

// Size is the default footprint of a new tile.
type Size struct {
	W, H       int
	MinW, MinH int
}

// Right returns the first column to the right of r.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the first row below r.
func (r Rect) Bottom() int { return r.Y + r.H }

// Empty reports whether r has no area, which is how a missing layout
// decodes from the wire.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// SameGeometry compares position and size only; ids and minimums are
// ignored.
func (r Rect) SameGeometry(o Rect) bool {
	return r.X == o.X && r.Y == o.Y && r.W == o.W && r.H == o.H
}

// Overlaps reports whether r and o share at least one grid cell.
func (r Rect) Overlaps(o Rect) bool {
	if r.I != "" && r.I == o.I {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether grid cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Clamp fits r into a grid of cols columns: minimums are at least 1,
// size is at least the minimums, width is at most cols, and the tile does
// not cross the right edge or sit at a negative offset.
func (r Rect) Clamp(cols int) Rect {
	if cols < 1 {
		cols = 1
	}
	if r.MinW < 1 {
		r.MinW = 1
	}
	if r.MinH < 1 {
		r.MinH = 1
	}
	if r.MinW > cols {
		r.MinW = cols
	}
	if r.W < r.MinW {
		r.W = r.MinW
	}
	if r.W > cols {
		r.W = cols
	}
	if r.H < r.MinH {
		r.H = r.MinH
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.Right() > cols {
		r.X = cols - r.W
	}
	return r
}

// WithSize returns a rect for id of size s at (x, y).
func WithSize(id string, s Size, x, y int) Rect {
	return Rect{I: id, X: x, Y: y, W: s.W, H: s.H, MinW: s.MinW, MinH: s.MinH}
}
