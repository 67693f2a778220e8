package app

import (
	"slices"

	"gitlab.com/tinyland/lab/tileboard/pkg/grid"
)

// FocusRing tracks which widget has focus, cycling in a fixed order.
type FocusRing struct {
	order   []string
	focused string
}

// SetOrder replaces the cycle order. Focus stays put if the focused id
// survives, else moves to the first id.
func (f *FocusRing) SetOrder(ids []string) {
	f.order = slices.Clone(ids)
	if !slices.Contains(f.order, f.focused) {
		f.focused = ""
		if len(f.order) > 0 {
			f.focused = f.order[0]
		}
	}
}

// Current returns the focused id, or "" when nothing can be focused.
func (f *FocusRing) Current() string { return f.focused }

// Focus moves focus to id if it is in the ring.
func (f *FocusRing) Focus(id string) bool {
	if !slices.Contains(f.order, id) {
		return false
	}
	f.focused = id
	return true
}

// Next moves focus forward, wrapping after the last id.
func (f *FocusRing) Next() { f.step(1) }

// Prev moves focus backward, wrapping before the first id.
func (f *FocusRing) Prev() { f.step(-1) }

func (f *FocusRing) step(d int) {
	n := len(f.order)
	if n == 0 {
		return
	}
	i := slices.Index(f.order, f.focused)
	if i < 0 {
		i = 0
	} else {
		i = (i + d + n) % n
	}
	f.focused = f.order[i]
}

// Neighbour returns the tile nearest to from in direction (dx, dy), where
// exactly one of dx, dy is non-zero. Tiles are compared by the distance
// between their top-left corners, with the off-axis distance weighted
// double so a tile straight ahead beats one diagonally closer.
func Neighbour(rects []grid.Rect, from string, dx, dy int) (string, bool) {
	var src grid.Rect
	found := false
	for _, r := range rects {
		if r.I == from {
			src, found = r, true
			break
		}
	}
	if !found {
		return "", false
	}
	best, bestScore := "", -1
	for _, r := range rects {
		if r.I == from {
			continue
		}
		ax, ay := r.X-src.X, r.Y-src.Y
		var along, across int
		switch {
		case dx > 0 && r.X >= src.Right():
			along, across = ax, ay
		case dx < 0 && r.Right() <= src.X:
			along, across = -ax, ay
		case dy > 0 && r.Y >= src.Bottom():
			along, across = ay, ax
		case dy < 0 && r.Bottom() <= src.Y:
			along, across = -ay, ax
		default:
			continue
		}
		if across < 0 {
			across = -across
		}
		score := along + 2*across
		if bestScore < 0 || score < bestScore {
			best, bestScore = r.I, score
		}
	}
	return best, bestScore >= 0
}
