package tui

import (
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/tileboard/pkg/app"
	"gitlab.com/tinyland/lab/tileboard/pkg/dashboard"
	"gitlab.com/tinyland/lab/tileboard/pkg/grid"
	"gitlab.com/tinyland/lab/tileboard/pkg/terminal"
	"gitlab.com/tinyland/lab/tileboard/pkg/widgets"
)

type loadedMsg struct {
	err error
}

type addedMsg struct {
	widget dashboard.Widget
	err    error
}

type removedMsg struct {
	id  string
	err error
}

type layoutMsg struct {
	result dashboard.ChangeResult
}

// resolve picks the breakpoint for the current width and rebuilds the
// grid when it changes.
func (m *Model) resolve() {
	bp := grid.Resolve(terminal.PixelWidth(m.width, m.cellPixels(), m.cellW))
	if bp != m.bp {
		m.log.Debug("breakpoint", zap.Stringer("from", m.bp), zap.Stringer("to", bp), zap.Int("cols", m.width))
		m.bp = bp
		m.drag = nil
		if m.engine != nil {
			m.rebuildEngine()
			m.setFocusOrder()
		}
	}
	if !m.narrow() {
		m.drawer = false
	}
	m.clampScroll()
}

// narrow reports whether the toolbar collapses into the drawer.
func (m *Model) narrow() bool {
	return m.bp == grid.XS || m.bp == grid.XXS
}

func (m *Model) reload() tea.Cmd {
	m.loading = true
	c := m.coll
	ctx, cancel := m.ctx()
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		defer cancel()
		return loadedMsg{err: c.Load(ctx)}
	})
}

func (m *Model) onLoaded(msg loadedMsg) tea.Cmd {
	m.loading = false
	if msg.err != nil {
		if m.checkAuth(msg.err) {
			return nil
		}
		m.banner = dashboard.Message(msg.err)
	}
	cmd, compacted := m.syncTiles()
	if compacted {
		return tea.Batch(cmd, m.commitLayout())
	}
	return cmd
}

func (m *Model) add(kind dashboard.Kind) tea.Cmd {
	if m.loading {
		return nil
	}
	c := m.coll
	ctx, cancel := m.ctx()
	return func() tea.Msg {
		defer cancel()
		w, err := c.Add(ctx, kind, dashboard.DefaultConfig(kind))
		return addedMsg{widget: w, err: err}
	}
}

func (m *Model) onAdded(msg addedMsg) tea.Cmd {
	if msg.err != nil {
		if m.checkAuth(msg.err) {
			return nil
		}
		m.banner = dashboard.Message(msg.err)
		return nil
	}
	m.banner = ""
	cmd, compacted := m.syncTiles()
	cmds := []tea.Cmd{cmd, m.refocus(func() { m.focus.Focus(msg.widget.ID) })}
	m.ensureVisible(msg.widget.ID)
	if compacted {
		cmds = append(cmds, m.commitLayout())
	}
	return tea.Batch(cmds...)
}

func (m *Model) remove(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	c := m.coll
	ctx, cancel := m.ctx()
	return func() tea.Msg {
		defer cancel()
		return removedMsg{id: id, err: c.Remove(ctx, id)}
	}
}

func (m *Model) onRemoved(msg removedMsg) tea.Cmd {
	if msg.err != nil {
		if m.checkAuth(msg.err) {
			return nil
		}
		m.banner = dashboard.Message(msg.err)
		return nil
	}
	if m.drag != nil && m.drag.id == msg.id {
		m.drag = nil
	}
	cmd, compacted := m.syncTiles()
	if compacted {
		return tea.Batch(cmd, m.commitLayout())
	}
	return cmd
}

func (m *Model) saveConfig(msg app.SaveConfigMsg) tea.Cmd {
	c := m.coll
	ctx, cancel := m.ctx()
	return func() tea.Msg {
		defer cancel()
		w, err := c.UpdateConfig(ctx, msg.WidgetID, msg.Partial)
		return app.ConfigSavedMsg{WidgetID: msg.WidgetID, Config: w.Config, Err: err}
	}
}

func (m *Model) onConfigSaved(msg app.ConfigSavedMsg) tea.Cmd {
	if msg.Err != nil {
		if m.checkAuth(msg.Err) {
			return nil
		}
		m.banner = dashboard.Message(msg.Err)
		return nil
	}
	if c, ok := m.tiles[msg.WidgetID].(app.Configurable); ok {
		return c.SetConfig(msg.Config)
	}
	return nil
}

// commitLayout adopts the active breakpoint's rects, together with every
// other breakpoint's current rects, into the collection at once and
// persists the canonical changes in the background.
func (m *Model) commitLayout() tea.Cmd {
	if m.engine == nil {
		return nil
	}
	active := m.engine.Rects()
	all := m.coll.Layouts()
	all[m.bp] = active
	change := m.coll.AdoptLayout(active, all)
	if change.Pending() == 0 {
		return nil
	}
	c := m.coll
	ctx, cancel := m.ctx()
	return func() tea.Msg {
		defer cancel()
		return layoutMsg{result: c.SaveLayout(ctx, change)}
	}
}

func (m *Model) onLayoutSaved(msg layoutMsg) tea.Cmd {
	if m.checkAuth(msg.result.Err) {
		return nil
	}
	if msg.result.Banner != "" {
		m.banner = msg.result.Banner
	}
	return nil
}

// syncTiles makes the tiles match the collection: new widgets are built
// and started, removed ones are closed, and surviving ones receive their
// current config. compacted reports whether rebuilding the grid moved any
// tile from its stored position.
func (m *Model) syncTiles() (cmd tea.Cmd, compacted bool) {
	ws := m.coll.Widgets()
	live := make(map[string]bool, len(ws))
	var cmds []tea.Cmd
	for _, w := range ws {
		live[w.ID] = true
		if t, ok := m.tiles[w.ID]; ok {
			if c, ok := t.(app.Configurable); ok {
				cmds = append(cmds, c.SetConfig(w.Config))
			}
			continue
		}
		t := widgets.New(w, m.deps)
		m.tiles[w.ID] = t
		cmds = append(cmds, t.Init())
	}
	for id, t := range m.tiles {
		if !live[id] {
			app.Close(t)
			delete(m.tiles, id)
		}
	}
	compacted = m.rebuildEngine()
	cmds = append(cmds, m.setFocusOrder())
	m.clampScroll()
	return tea.Batch(cmds...), compacted
}

func (m *Model) closeTiles() {
	for id, t := range m.tiles {
		app.Close(t)
		delete(m.tiles, id)
	}
	m.focus.SetOrder(nil)
}

// rebuildEngine loads the active breakpoint's rects into a fresh engine.
// It reports whether compaction moved any of them.
func (m *Model) rebuildEngine() bool {
	rects := m.coll.Layouts()[m.bp]
	m.engine = grid.NewEngine(grid.Columns(m.bp), rects)
	after := m.engine.Rects()
	for i := range rects {
		if !rects[i].SameGeometry(after[i]) {
			return true
		}
	}
	return false
}

// readingOrder returns the tile ids top to bottom, left to right.
func (m *Model) readingOrder() []string {
	if m.engine == nil {
		return nil
	}
	rects := m.engine.Rects()
	sort.SliceStable(rects, func(i, j int) bool {
		if rects[i].Y != rects[j].Y {
			return rects[i].Y < rects[j].Y
		}
		return rects[i].X < rects[j].X
	})
	ids := make([]string, len(rects))
	for i, r := range rects {
		ids[i] = r.I
	}
	return ids
}

func (m *Model) setFocusOrder() tea.Cmd {
	return m.refocus(func() { m.focus.SetOrder(m.readingOrder()) })
}

// refocus runs change and moves widget focus from the tile focused
// before it to the one focused after.
func (m *Model) refocus(change func()) tea.Cmd {
	before := m.focus.Current()
	change()
	after := m.focus.Current()
	if after != "" {
		m.ensureVisible(after)
	}
	if before == after {
		return nil
	}
	var cmds []tea.Cmd
	if f, ok := m.tiles[before].(app.Focusable); ok {
		cmds = append(cmds, f.SetFocused(false))
	}
	if f, ok := m.tiles[after].(app.Focusable); ok {
		cmds = append(cmds, f.SetFocused(true))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.drawer {
		return m.drawerKey(msg)
	}
	focused := m.focus.Current()
	if w, ok := m.tiles[focused]; ok && app.Editing(w) {
		return w.HandleKey(msg)
	}

	k := m.keys
	switch {
	case isKey(msg, k.Quit):
		return m.quit()
	case isKey(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.clampScroll()
		return nil
	case isKey(msg, k.Menu):
		if m.narrow() {
			m.drawer, m.drawerSel = true, 0
		}
		return nil
	case isKey(msg, k.Logout):
		return m.signOut("")
	case isKey(msg, k.Back):
		m.banner, m.notice = "", ""
		return nil
	case m.loading:
		return nil
	case isKey(msg, k.Reload):
		return m.reload()
	case isKey(msg, k.Notes):
		return m.add(dashboard.Notes)
	case isKey(msg, k.Wthr):
		return m.add(dashboard.Weather)
	case isKey(msg, k.Clock):
		return m.add(dashboard.Clock)
	case isKey(msg, k.Next):
		return m.refocus(m.focus.Next)
	case isKey(msg, k.Prev):
		return m.refocus(m.focus.Prev)
	case isKey(msg, k.Left):
		return m.neighbour(-1, 0)
	case isKey(msg, k.Right):
		return m.neighbour(1, 0)
	case isKey(msg, k.Up):
		return m.neighbour(0, -1)
	case isKey(msg, k.Down):
		return m.neighbour(0, 1)
	case isKey(msg, k.MoveLeft):
		return m.move(-1, 0)
	case isKey(msg, k.MoveRight):
		return m.move(1, 0)
	case isKey(msg, k.MoveUp):
		return m.move(0, -1)
	case isKey(msg, k.MoveDown):
		return m.move(0, 1)
	case isKey(msg, k.Narrower):
		return m.resizeTile(-1, 0)
	case isKey(msg, k.Wider):
		return m.resizeTile(1, 0)
	case isKey(msg, k.Shorter):
		return m.resizeTile(0, -1)
	case isKey(msg, k.Taller):
		return m.resizeTile(0, 1)
	case isKey(msg, k.Delete):
		return m.remove(focused)
	}
	if w, ok := m.tiles[focused]; ok {
		return w.HandleKey(msg)
	}
	return nil
}

func (m *Model) neighbour(dx, dy int) tea.Cmd {
	if m.engine == nil {
		return nil
	}
	id, ok := app.Neighbour(m.engine.Rects(), m.focus.Current(), dx, dy)
	if !ok {
		return nil
	}
	return m.refocus(func() { m.focus.Focus(id) })
}

func (m *Model) move(dx, dy int) tea.Cmd {
	id := m.focus.Current()
	if m.engine == nil || !m.engine.Move(id, dx, dy) {
		return nil
	}
	return m.afterGesture(id)
}

func (m *Model) resizeTile(dw, dh int) tea.Cmd {
	id := m.focus.Current()
	if m.engine == nil || !m.engine.Resize(id, dw, dh) {
		return nil
	}
	return m.afterGesture(id)
}

// afterGesture runs once a move or resize has changed the grid.
func (m *Model) afterGesture(id string) tea.Cmd {
	cmd := m.setFocusOrder()
	m.ensureVisible(id)
	return tea.Batch(cmd, m.commitLayout())
}

type drawerItem struct {
	zone  string
	label string
}

var drawerItems = []drawerItem{
	{"drawer-notes", "Add Notes"},
	{"drawer-weather", "Add Weather"},
	{"drawer-clock", "Add Clock"},
	{"drawer-logout", "Logout"},
}

func (m *Model) drawerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k", "shift+tab":
		m.drawerSel = (m.drawerSel + len(drawerItems) - 1) % len(drawerItems)
	case "down", "j", "tab":
		m.drawerSel = (m.drawerSel + 1) % len(drawerItems)
	case "enter":
		return m.chooseDrawer(m.drawerSel)
	case "esc", "m":
		m.drawer = false
	case "q":
		return m.quit()
	}
	return nil
}

// chooseDrawer runs drawer item i and closes the drawer.
func (m *Model) chooseDrawer(i int) tea.Cmd {
	m.drawer = false
	switch i {
	case 0:
		return m.add(dashboard.Notes)
	case 1:
		return m.add(dashboard.Weather)
	case 2:
		return m.add(dashboard.Clock)
	case 3:
		return m.signOut("")
	}
	return nil
}
