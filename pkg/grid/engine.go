package grid

import "sort"

// Engine owns one breakpoint's rects and applies drag and resize gestures
// to them. After every gesture the grid holds no overlapping tiles and is
// vertically compacted: each tile sits as high as it can without passing
// another tile.
//
// Engine is not safe for concurrent use; it lives on the UI event loop.
type Engine struct {
	cols  int
	rects []Rect
}

// NewEngine copies rects, clamps them to cols, pushes apart any overlaps,
// and compacts the result.
func NewEngine(cols int, rects []Rect) *Engine {
	if cols < 1 {
		cols = 1
	}
	e := &Engine{cols: cols, rects: make([]Rect, len(rects))}
	for i, r := range rects {
		e.rects[i] = r.Clamp(cols)
	}
	for _, i := range e.order() {
		e.pushDown(i)
	}
	e.Compact()
	return e
}

// Cols returns the grid's column count.
func (e *Engine) Cols() int { return e.cols }

// Len returns the number of tiles.
func (e *Engine) Len() int { return len(e.rects) }

// Rects returns a copy of the tiles in their original order.
func (e *Engine) Rects() []Rect {
	out := make([]Rect, len(e.rects))
	copy(out, e.rects)
	return out
}

// Rect returns the tile for id.
func (e *Engine) Rect(id string) (Rect, bool) {
	if i := e.index(id); i >= 0 {
		return e.rects[i], true
	}
	return Rect{}, false
}

// At returns the id of the tile covering grid cell (x, y).
func (e *Engine) At(x, y int) (string, bool) {
	for _, r := range e.rects {
		if r.Contains(x, y) {
			return r.I, true
		}
	}
	return "", false
}

// Rows returns the number of rows the grid currently occupies.
func (e *Engine) Rows() int {
	rows := 0
	for _, r := range e.rects {
		rows = maxInt(rows, r.Bottom())
	}
	return rows
}

// Move shifts the tile by (dx, dy) grid units. It reports whether any
// tile's geometry changed.
func (e *Engine) Move(id string, dx, dy int) bool {
	r, ok := e.Rect(id)
	if !ok {
		return false
	}
	return e.MoveTo(id, r.X+dx, r.Y+dy)
}

// MoveTo places the tile at (x, y). Moving down past a tile below swaps
// the two; moving up or sideways into another tile pushes that tile
// down. It reports whether any tile's geometry changed.
func (e *Engine) MoveTo(id string, x, y int) bool {
	i := e.index(id)
	if i < 0 {
		return false
	}
	before := e.Rects()
	old := e.rects[i]

	moved := old
	moved.X, moved.Y = x, y
	moved = moved.Clamp(e.cols)
	e.rects[i] = moved

	if moved.Y > old.Y {
		// Tiles that started below the old position and now collide hop
		// up into the vacated row; the moved tile lands beneath them.
		bottom := moved.Y
		for j := range e.rects {
			if j == i || !e.rects[j].Overlaps(moved) || e.rects[j].Y < old.Y {
				continue
			}
			e.rects[j].Y = old.Y
			bottom = maxInt(bottom, e.rects[j].Bottom())
		}
		e.rects[i].Y = bottom
	}
	e.pushDown(i)
	e.Compact()
	return changed(before, e.rects)
}

// Resize grows or shrinks the tile by (dw, dh), respecting its minimums
// and the right edge. It reports whether any tile's geometry changed.
func (e *Engine) Resize(id string, dw, dh int) bool {
	i := e.index(id)
	if i < 0 {
		return false
	}
	r := e.rects[i]
	return e.SetSize(id, r.W+dw, r.H+dh)
}

// SetSize sets the tile's size to (w, h), clamped like Resize.
func (e *Engine) SetSize(id string, w, h int) bool {
	i := e.index(id)
	if i < 0 {
		return false
	}
	before := e.Rects()
	r := e.rects[i]
	r.W, r.H = w, h
	if r.X+maxInt(r.W, 1) > e.cols {
		r.W = e.cols - r.X
	}
	e.rects[i] = r.Clamp(e.cols)
	e.pushDown(i)
	e.Compact()
	return changed(before, e.rects)
}

// Compact floats every tile upward until it touches the top edge or
// another tile. Tiles are processed top to bottom, left to right.
func (e *Engine) Compact() {
	placed := make([]int, 0, len(e.rects))
	for _, i := range e.order() {
		r := e.rects[i]
		for r.Y > 0 {
			up := r
			up.Y--
			if e.collidesAny(up, placed) {
				break
			}
			r = up
		}
		for {
			j, hit := e.firstCollision(r, placed)
			if !hit {
				break
			}
			r.Y = e.rects[j].Bottom()
		}
		e.rects[i] = r
		placed = append(placed, i)
	}
}

// pushDown moves every tile overlapping rects[i] to just below it,
// cascading through the tiles it lands on.
func (e *Engine) pushDown(i int) {
	anchor := e.rects[i]
	for _, j := range e.order() {
		if j == i || !e.rects[j].Overlaps(anchor) {
			continue
		}
		e.rects[j].Y = anchor.Bottom()
		e.pushDown(j)
	}
}

func (e *Engine) collidesAny(r Rect, among []int) bool {
	_, hit := e.firstCollision(r, among)
	return hit
}

func (e *Engine) firstCollision(r Rect, among []int) (int, bool) {
	for _, j := range among {
		if e.rects[j].Overlaps(r) {
			return j, true
		}
	}
	return -1, false
}

// order returns tile indexes sorted by row then column.
func (e *Engine) order() []int {
	idx := make([]int, len(e.rects))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := e.rects[idx[a]], e.rects[idx[b]]
		if ra.Y != rb.Y {
			return ra.Y < rb.Y
		}
		return ra.X < rb.X
	})
	return idx
}

func (e *Engine) index(id string) int {
	for i, r := range e.rects {
		if r.I == id {
			return i
		}
	}
	return -1
}

func changed(before, after []Rect) bool {
	if len(before) != len(after) {
		return true
	}
	for i := range before {
		if !before[i].SameGeometry(after[i]) {
			return true
		}
	}
	return false
}
