package grid

// LayoutMap holds one ordered rect list per breakpoint. Every list holds
// exactly one rect per widget in the owning collection.
type LayoutMap map[Breakpoint][]Rect

// NewLayoutMap returns a map with an empty list for every tier.
func NewLayoutMap() LayoutMap {
	m := make(LayoutMap, len(tiers))
	for _, t := range tiers {
		m[t.Name] = []Rect{}
	}
	return m
}

// FromCanonical derives a LayoutMap by copying each canonical rect into
// every breakpoint, clamped to that breakpoint's columns.
func FromCanonical(rects []Rect) LayoutMap {
	m := NewLayoutMap()
	for _, t := range tiers {
		list := make([]Rect, 0, len(rects))
		for _, r := range rects {
			list = append(list, r.Clamp(t.Cols))
		}
		m[t.Name] = list
	}
	return m
}

// Clone returns a deep copy of m.
func (m LayoutMap) Clone() LayoutMap {
	out := make(LayoutMap, len(m))
	for bp, list := range m {
		cp := make([]Rect, len(list))
		copy(cp, list)
		out[bp] = cp
	}
	return out
}

// Rect returns the rect for id in bp.
func (m LayoutMap) Rect(bp Breakpoint, id string) (Rect, bool) {
	for _, r := range m[bp] {
		if r.I == id {
			return r, true
		}
	}
	return Rect{}, false
}

// IDs returns the ids present in bp, in list order.
func (m LayoutMap) IDs(bp Breakpoint) []string {
	list := m[bp]
	ids := make([]string, len(list))
	for i, r := range list {
		ids[i] = r.I
	}
	return ids
}

// Remove drops id from every breakpoint.
func (m LayoutMap) Remove(id string) {
	for bp, list := range m {
		kept := list[:0:0]
		for _, r := range list {
			if r.I != id {
				kept = append(kept, r)
			}
		}
		m[bp] = kept
	}
}

// Append adds a new tile to every breakpoint. The canonical breakpoint
// receives canonical unchanged; every other breakpoint gets a copy whose
// width is min(defaultW, cols) and whose position is recomputed against
// that breakpoint's own rects with the bottom-append rule.
func (m LayoutMap) Append(canonical Rect, defaultW int) {
	for _, t := range tiers {
		list := m[t.Name]
		if t.Name == Canonical {
			m[t.Name] = append(list, canonical.Clamp(t.Cols))
			continue
		}
		r := canonical
		r.W = minInt(defaultW, t.Cols)
		if r.W < 1 {
			r.W = 1
		}
		r.X, r.Y = Place(list, r.W, t.Cols)
		m[t.Name] = append(list, r.Clamp(t.Cols))
	}
}

// Place returns the bottom-append position for a tile of width w on a
// grid of cols columns: y is the first row below every existing rect, and
// x is (rects already starting on that row) * w, wrapped to cols and kept
// inside the right edge.
func Place(rects []Rect, w, cols int) (x, y int) {
	for _, r := range rects {
		if b := r.Bottom(); b > y {
			y = b
		}
	}
	n := 0
	for _, r := range rects {
		if r.Y == y {
			n++
		}
	}
	if cols < 1 {
		return 0, y
	}
	x = (n * w) % cols
	if x+w > cols {
		x = 0
	}
	return x, y
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
