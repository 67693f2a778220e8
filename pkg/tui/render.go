package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/tileboard/pkg/components"
	"gitlab.com/tinyland/lab/tileboard/pkg/dashboard"
	"gitlab.com/tinyland/lab/tileboard/pkg/grid"
	"gitlab.com/tinyland/lab/tileboard/pkg/layout"
)

// Title is the dashboard heading.
const Title = "My Dashboard"

const (
	drawerWidth = 26
	emptyHint   = "No widgets yet. Press n, w or c to add one."
)

type button struct {
	zone  string
	label string
	run   func(m *Model) tea.Cmd
}

var toolbarButtons = []button{
	{"tb-notes", "+ Add Notes", func(m *Model) tea.Cmd { return m.add(dashboard.Notes) }},
	{"tb-weather", "+ Add Weather", func(m *Model) tea.Cmd { return m.add(dashboard.Weather) }},
	{"tb-clock", "+ Add Clock", func(m *Model) tea.Cmd { return m.add(dashboard.Clock) }},
	{"tb-logout", "Logout", func(m *Model) tea.Cmd { return m.signOut("") }},
}

var menuButton = button{"tb-menu", "≡ Menu", func(m *Model) tea.Cmd {
	m.drawer, m.drawerSel = true, 0
	return nil
}}

// frame is the screen geometry of the grid area.
type frame struct {
	area    layout.Rect // grid viewport in screen cells
	top     int         // screen row of the first grid line
	height  int         // visible grid lines
	rowH    int
	gap     int
	offsets []int
	widths  []int
}

// layoutFrame stacks the header, the optional banner and notice lines,
// the grid, and the help footer.
func (m *Model) layoutFrame() frame {
	lines := func(s string) int {
		if s == "" {
			return 0
		}
		return 1
	}
	foot := lipgloss.Height(m.help.View(m.keys))
	regions := layout.NewLayout(layout.Vertical,
		layout.Length{Value: 1},
		layout.Length{Value: lines(m.banner)},
		layout.Length{Value: lines(m.notice)},
		layout.Fill{Weight: 1},
		layout.Length{Value: foot},
	).Split(layout.Rect{Width: m.width, Height: m.height})
	area := regions[3]
	offsets, widths := layout.Tracks(area.Width, grid.Columns(m.bp), m.gridCfg.Gap)
	return frame{
		area:    area,
		top:     area.Y,
		height:  area.Height,
		rowH:    m.gridCfg.RowHeight,
		gap:     m.gridCfg.Gap,
		offsets: offsets,
		widths:  widths,
	}
}

// tile returns r's cell rectangle in unscrolled grid lines.
func (f frame) tile(r grid.Rect) (x, y, w, h int) {
	x, w = layout.Span(f.offsets, f.widths, r.X, r.W)
	return x, r.Y * f.rowH, w, r.H * f.rowH
}

// View implements tea.Model.
func (m *Model) View() string {
	var out string
	switch m.screen {
	case screenRestore:
		out = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spin.View()+" Restoring session...")
	case screenLogin:
		out = m.login.view(m.st, m.width, m.height)
	case screenRegister:
		out = m.register.view(m.st, m.width, m.height)
	case screenDashboard:
		out = m.dashboardView()
	}
	return m.zones.Scan(out)
}

func (m *Model) dashboardView() string {
	f := m.layoutFrame()
	parts := []string{m.headerView()}
	if m.banner != "" {
		parts = append(parts, components.Truncate(m.st.Banner.Render(m.banner), m.width))
	}
	if m.notice != "" {
		parts = append(parts, components.Truncate(m.st.Notice.Render(m.notice), m.width))
	}
	if f.height > 0 {
		parts = append(parts, m.gridView(f))
	}
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n")
}

func (m *Model) headerView() string {
	left := m.st.FormTitle.Render(Title)
	if m.user.Email != "" || m.user.Name != "" {
		left += m.st.Dim.Render("  " + m.user.Label())
	}
	buttons := toolbarButtons
	if m.narrow() {
		buttons = []button{menuButton}
	}
	rendered := make([]string, len(buttons))
	for i, b := range buttons {
		rendered[i] = m.zones.Mark(b.zone, m.st.Button.Render(b.label))
	}
	right := strings.Join(rendered, " ")
	gap := m.width - components.VisibleLen(left) - components.VisibleLen(right)
	if gap < 1 {
		return components.Truncate(left+" "+right, m.width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) gridView(f frame) string {
	if m.loading {
		return lipgloss.Place(m.width, f.height, lipgloss.Center, lipgloss.Center,
			m.spin.View()+" Loading widgets...")
	}
	canvas := components.NewCanvas(m.width, f.height)
	if m.engine == nil || m.engine.Len() == 0 {
		hint := lipgloss.Place(m.width, f.height, lipgloss.Center, lipgloss.Center, m.st.Dim.Render(emptyHint))
		canvas.Draw(0, 0, components.Lines(hint))
	} else {
		m.drawTiles(canvas, f)
	}
	if m.drawer {
		m.drawDrawer(canvas)
	}
	return canvas.String()
}

func (m *Model) drawTiles(c *components.Canvas, f frame) {
	focused := m.focus.Current()
	for _, r := range m.engine.Rects() {
		t, ok := m.tiles[r.I]
		if !ok {
			continue
		}
		x, y, w, h := f.tile(r)
		y -= m.scroll
		if y+h <= 0 || y >= f.height {
			continue
		}
		box := components.Box{
			Width:       w,
			Height:      h,
			Title:       t.Title(),
			Closable:    true,
			BorderStyle: m.st.Border,
			TitleStyle:  m.st.Title,
			CloseStyle:  m.st.Close,
		}
		switch {
		case m.drag != nil && m.drag.id == r.I:
			box.BorderStyle = m.st.Dim
		case r.I == focused:
			box.BorderStyle = m.st.BorderFocus
		}
		iw, ih := box.Inner()
		c.Draw(x, y, box.Render(components.Lines(t.View(iw, ih))))
	}
	if m.drag != nil {
		x, y, w, h := f.tile(m.drag.ghost)
		m.drawGhost(c, x, y-m.scroll, w, h)
	}
}

// drawGhost outlines the drop target, leaving the tiles beneath visible
// through its interior.
func (m *Model) drawGhost(c *components.Canvas, x, y, w, h int) {
	lines := components.Box{Width: w, Height: h, Dashed: true, BorderStyle: m.st.Ghost}.Render(nil)
	if len(lines) < 2 {
		return
	}
	c.Draw(x, y, lines[:1])
	c.Draw(x, y+h-1, lines[h-1:])
	side := []string{m.st.Ghost.Render("╎")}
	for i := 1; i < h-1; i++ {
		c.Draw(x, y+i, side)
		c.Draw(x+w-1, y+i, side)
	}
}

func (m *Model) drawDrawer(c *components.Canvas) {
	cw, ch := c.Size()
	w := min(drawerWidth, cw)
	h := min(len(drawerItems)+4, ch)
	box := components.Box{
		Width:       w,
		Height:      h,
		Title:       "Menu",
		BorderStyle: m.st.BorderFocus,
		TitleStyle:  m.st.Title,
	}
	lines := []string{""}
	for i, it := range drawerItems {
		style, mark := m.st.Body, "  "
		if i == m.drawerSel {
			style, mark = m.st.ButtonActive, "> "
		}
		lines = append(lines, m.zones.Mark(it.zone, mark+style.Render(it.label)))
	}
	c.Draw(cw-w, 0, box.Render(lines))
}
