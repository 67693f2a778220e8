package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/tileboard/pkg/components"
	"gitlab.com/tinyland/lab/tileboard/pkg/grid"
)

type dragMode int

const (
	dragMove dragMode = iota
	dragResize
)

// dragState is an in-flight mouse gesture. The ghost follows the pointer
// and the engine only changes on release.
type dragState struct {
	id    string
	mode  dragMode
	grabX int // pointer column offset from the tile's left edge, in grid units
	ghost grid.Rect
}

// point maps a screen cell to grid coordinates and the grid line under
// it. Cells above or below the grid give out-of-range rows.
func (f frame) point(x, y, scroll int) (gx, gy, line int) {
	line = y - f.top + scroll
	gy = floorDiv(line, max(f.rowH, 1))
	for i := range f.offsets {
		gx = i
		if x < f.offsets[i]+f.widths[i]+f.gap {
			break
		}
	}
	return gx, gy, line
}

func (f frame) contains(x, y int) bool {
	return f.area.Contains(x, y)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scrollBy(-m.gridCfg.RowHeight)
	case msg.Button == tea.MouseButtonWheelDown:
		m.scrollBy(m.gridCfg.RowHeight)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if cmd, ok := m.clickZone(msg); ok {
			return cmd
		}
		if m.drawer {
			m.drawer = false
			return nil
		}
		return m.press(msg.X, msg.Y)
	case msg.Action == tea.MouseActionMotion:
		m.dragTo(msg.X, msg.Y)
	case msg.Action == tea.MouseActionRelease:
		return m.drop(msg.X, msg.Y)
	}
	return nil
}

// clickZone runs the toolbar or drawer button under the pointer.
func (m *Model) clickZone(msg tea.MouseMsg) (tea.Cmd, bool) {
	if m.drawer {
		for i, it := range drawerItems {
			if m.inZone(it.zone, msg) {
				return m.chooseDrawer(i), true
			}
		}
		return nil, false
	}
	buttons := toolbarButtons
	if m.narrow() {
		buttons = []button{menuButton}
	}
	for _, b := range buttons {
		if m.inZone(b.zone, msg) {
			return b.run(m), true
		}
	}
	return nil, false
}

func (m *Model) inZone(id string, msg tea.MouseMsg) bool {
	z := m.zones.Get(id)
	return z != nil && z.InBounds(msg)
}

// press focuses the tile under the pointer. On the title row it deletes
// the tile when the pointer is on [x], else starts a move; on the
// bottom-right corner it starts a resize.
func (m *Model) press(x, y int) tea.Cmd {
	f := m.layoutFrame()
	if m.engine == nil || m.loading || !f.contains(x, y) {
		return nil
	}
	gx, gy, line := f.point(x, y, m.scroll)
	id, ok := m.engine.At(gx, gy)
	if !ok {
		return nil
	}
	r, _ := m.engine.Rect(id)
	tx, ty, tw, th := f.tile(r)
	if x < tx || x >= tx+tw {
		return nil
	}
	cmd := m.refocus(func() { m.focus.Focus(id) })
	switch {
	case line == ty:
		box := components.Box{Width: tw, Height: th, Closable: true}
		if s, e, ok := box.CloseSpan(); ok && x-tx >= s && x-tx < e {
			return tea.Batch(cmd, m.remove(id))
		}
		m.drag = &dragState{id: id, mode: dragMove, grabX: gx - r.X, ghost: r}
	case line == ty+th-1 && x >= tx+tw-2:
		m.drag = &dragState{id: id, mode: dragResize, ghost: r}
	}
	return cmd
}

// dragTo moves the ghost under the pointer.
func (m *Model) dragTo(x, y int) {
	d := m.drag
	if d == nil || m.engine == nil {
		return
	}
	gx, gy, _ := m.layoutFrame().point(x, y, m.scroll)
	cols := m.engine.Cols()
	switch d.mode {
	case dragMove:
		d.ghost.X, d.ghost.Y = gx-d.grabX, max(gy, 0)
	case dragResize:
		d.ghost.W = min(gx-d.ghost.X+1, cols-d.ghost.X)
		d.ghost.H = gy - d.ghost.Y + 1
	}
	d.ghost = d.ghost.Clamp(cols)
}

// drop commits the gesture to the engine and persists the result.
func (m *Model) drop(x, y int) tea.Cmd {
	d := m.drag
	if d == nil {
		return nil
	}
	m.dragTo(x, y)
	m.drag = nil
	var changed bool
	switch d.mode {
	case dragMove:
		changed = m.engine.MoveTo(d.id, d.ghost.X, d.ghost.Y)
	case dragResize:
		changed = m.engine.SetSize(d.id, d.ghost.W, d.ghost.H)
	}
	if !changed {
		return nil
	}
	return m.afterGesture(d.id)
}

func (m *Model) maxScroll() int {
	if m.engine == nil {
		return 0
	}
	f := m.layoutFrame()
	return max(m.engine.Rows()*f.rowH-f.height, 0)
}

func (m *Model) clampScroll() {
	m.scroll = max(min(m.scroll, m.maxScroll()), 0)
}

func (m *Model) scrollBy(d int) {
	m.scroll += d
	m.clampScroll()
}

// ensureVisible scrolls the grid so tile id is on screen, preferring its
// top edge when it is taller than the view.
func (m *Model) ensureVisible(id string) {
	if m.engine == nil {
		return
	}
	r, ok := m.engine.Rect(id)
	f := m.layoutFrame()
	if !ok || f.height <= 0 {
		return
	}
	_, top, _, h := f.tile(r)
	if bottom := top + h; bottom > m.scroll+f.height {
		m.scroll = bottom - f.height
	}
	if top < m.scroll {
		m.scroll = top
	}
	m.clampScroll()
}
