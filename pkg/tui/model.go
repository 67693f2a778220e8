// Package tui is the dashboard's terminal shell: the bubbletea root model
// with the sign-in and sign-up screens, the protected dashboard screen,
// its toolbar and drawer, and the grid compositor that frames each
// widget as a tile.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/tileboard/pkg/api"
	"gitlab.com/tinyland/lab/tileboard/pkg/app"
	"gitlab.com/tinyland/lab/tileboard/pkg/config"
	"gitlab.com/tinyland/lab/tileboard/pkg/dashboard"
	"gitlab.com/tinyland/lab/tileboard/pkg/grid"
	"gitlab.com/tinyland/lab/tileboard/pkg/session"
	"gitlab.com/tinyland/lab/tileboard/pkg/terminal"
	"gitlab.com/tinyland/lab/tileboard/pkg/theme"
	"gitlab.com/tinyland/lab/tileboard/pkg/widgets"
)

// MsgSessionExpired is shown on the sign-in form after the server
// rejects the token.
const MsgSessionExpired = "Your session has expired. Please sign in again."

type screen int

const (
	screenRestore screen = iota
	screenLogin
	screenRegister
	screenDashboard
)

func (s screen) String() string {
	switch s {
	case screenRestore:
		return "restore"
	case screenLogin:
		return "login"
	case screenRegister:
		return "register"
	case screenDashboard:
		return "dashboard"
	}
	return "unknown"
}

// Options wires the shell to the rest of the client.
type Options struct {
	Session    *session.Store
	Collection *dashboard.Collection
	Widgets    widgets.Deps
	Styles     theme.Styles
	Grid       config.GridConfig
	// CellWidth is the pixel width of one terminal column used to pick
	// the breakpoint when the terminal reports no pixel size.
	CellWidth int
	// CellPixels reports the terminal's own cell width in pixels, 0 when
	// unknown. nil uses terminal.CellWidth.
	CellPixels func() int
	// Timeout bounds each backend call the shell makes.
	Timeout time.Duration
	Log     *zap.Logger
	// Zones tracks the toolbar and drawer buttons. nil creates one.
	Zones *zone.Manager
}

// Model is the root bubbletea model.
type Model struct {
	sess       *session.Store
	coll       *dashboard.Collection
	deps       widgets.Deps
	st         theme.Styles
	gridCfg    config.GridConfig
	cellW      int
	cellPixels func() int
	timeout    time.Duration
	log        *zap.Logger
	zones      *zone.Manager

	keys KeyMap
	help help.Model
	spin spinner.Model

	screen        screen
	width, height int

	login    authForm
	register authForm
	user     session.User

	loading   bool
	banner    string
	notice    string
	drawer    bool
	drawerSel int

	bp     grid.Breakpoint
	engine *grid.Engine
	tiles  map[string]app.Widget
	focus  app.FocusRing
	scroll int
	drag   *dragState
}

// New returns the shell. It starts on a restore screen and lands on the
// sign-in form or the dashboard once the stored session is checked.
func New(o Options) *Model {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Styles.Theme.Name == "" {
		o.Styles = theme.NewStyles(theme.Get("default"))
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Grid.RowHeight <= 0 {
		o.Grid.RowHeight = 4
	}
	if o.CellPixels == nil {
		o.CellPixels = terminal.CellWidth
	}
	if o.Zones == nil {
		o.Zones = zone.New()
	}
	o.Widgets.Styles = o.Styles
	if o.Widgets.Log == nil {
		o.Widgets.Log = o.Log
	}

	h := help.New()
	h.Styles.ShortKey = o.Styles.HelpKey
	h.Styles.ShortDesc = o.Styles.HelpDesc
	h.Styles.FullKey = o.Styles.HelpKey
	h.Styles.FullDesc = o.Styles.HelpDesc

	return &Model{
		sess:       o.Session,
		coll:       o.Collection,
		deps:       o.Widgets,
		st:         o.Styles,
		gridCfg:    o.Grid,
		cellW:      o.CellWidth,
		cellPixels: o.CellPixels,
		timeout:    o.Timeout,
		log:        o.Log,
		zones:      o.Zones,
		keys:       DefaultKeyMap(),
		help:       h,
		spin:       spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(o.Styles.Pending)),
		login:      newAuthForm(modeLogin),
		register:   newAuthForm(modeRegister),
		bp:         grid.Canonical,
		tiles:      make(map[string]app.Widget),
	}
}

// Screen returns the name of the active screen.
func (m *Model) Screen() string { return m.screen.String() }

// Banner returns the error banner text, "" when none is shown.
func (m *Model) Banner() string { return m.banner }

// Breakpoint returns the active breakpoint.
func (m *Model) Breakpoint() grid.Breakpoint { return m.bp }

// Focused returns the id of the focused tile.
func (m *Model) Focused() string { return m.focus.Current() }

// Tile returns the widget drawn in tile id.
func (m *Model) Tile(id string) (app.Widget, bool) {
	w, ok := m.tiles[id]
	return w, ok
}

// Rects returns the active breakpoint's tiles.
func (m *Model) Rects() []grid.Rect {
	if m.engine == nil {
		return nil
	}
	return m.engine.Rects()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.restoreCmd())
}

type restoredMsg struct {
	ok  bool
	err error
}

type loginMsg struct {
	user session.User
	err  error
}

type registerMsg struct {
	err error
}

func (m *Model) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

func (m *Model) restoreCmd() tea.Cmd {
	s := m.sess
	return func() tea.Msg {
		ok, err := s.Restore()
		return restoredMsg{ok: ok, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resolve()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		switch m.screen {
		case screenLogin, screenRegister:
			return m, m.updateAuth(msg)
		case screenDashboard:
			return m, m.handleKey(msg)
		}
		return m, nil

	case tea.MouseMsg:
		if m.screen == screenDashboard {
			return m, m.handleMouse(msg)
		}
		return m, nil

	case spinner.TickMsg:
		if msg.ID == m.spin.ID() {
			if m.screen != screenRestore && !m.loading {
				return m, nil
			}
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}

	case restoredMsg:
		if errors.Is(msg.err, session.ErrExpired) {
			m.login.notice = MsgSessionExpired
		} else if msg.err != nil {
			m.log.Warn("restore session", zap.Error(msg.err))
		}
		if !msg.ok {
			m.screen = screenLogin
			return m, nil
		}
		if u, ok := m.sess.User(); ok {
			m.user = u
		}
		return m, m.enterDashboard()

	case loginMsg:
		if msg.err != nil {
			m.login.fail(msg.err)
			return m, nil
		}
		m.user = msg.user
		m.login = newAuthForm(modeLogin)
		return m, m.enterDashboard()

	case registerMsg:
		if msg.err != nil {
			m.register.fail(msg.err)
			return m, nil
		}
		m.register = newAuthForm(modeRegister)
		m.login = newAuthForm(modeLogin)
		m.login.notice = MsgRegistered
		m.screen = screenLogin
		return m, nil

	case loadedMsg:
		return m, m.onLoaded(msg)
	case addedMsg:
		return m, m.onAdded(msg)
	case removedMsg:
		return m, m.onRemoved(msg)
	case layoutMsg:
		return m, m.onLayoutSaved(msg)

	case app.SaveConfigMsg:
		return m, m.saveConfig(msg)
	case app.ConfigSavedMsg:
		return m, tea.Batch(m.onConfigSaved(msg), m.broadcast(msg))
	case app.BannerMsg:
		m.banner = msg.Text
		return m, nil
	case app.NoticeMsg:
		m.notice = msg.Text
		return m, nil
	}
	return m, m.broadcast(msg)
}

func (m *Model) quit() tea.Cmd {
	m.closeTiles()
	m.zones.Close()
	return tea.Quit
}

func (m *Model) updateAuth(msg tea.KeyMsg) tea.Cmd {
	f := &m.login
	if m.screen == screenRegister {
		f = &m.register
	}
	if msg.String() == "esc" && m.screen == screenRegister && !f.busy {
		m.screen = screenLogin
		return nil
	}
	act, cmd := f.handleKey(msg)
	switch act {
	case formSwitch:
		if m.screen == screenLogin {
			m.register = newAuthForm(modeRegister)
			m.screen = screenRegister
		} else {
			m.login = newAuthForm(modeLogin)
			m.screen = screenLogin
		}
		return nil
	case formSubmit:
		f.notice = ""
		return tea.Batch(cmd, m.submitCmd(f))
	}
	return cmd
}

func (m *Model) submitCmd(f *authForm) tea.Cmd {
	email, password := f.email(), f.password()
	s := m.sess
	ctx, cancel := m.ctx()
	if f.mode == modeRegister {
		return func() tea.Msg {
			defer cancel()
			return registerMsg{err: s.Register(ctx, email, password)}
		}
	}
	return func() tea.Msg {
		defer cancel()
		u, err := s.Login(ctx, email, password)
		return loginMsg{user: u, err: err}
	}
}

// enterDashboard shows the dashboard, gated on an authenticated session,
// and starts loading the widgets.
func (m *Model) enterDashboard() tea.Cmd {
	if !m.sess.Authenticated() {
		m.screen = screenLogin
		return nil
	}
	m.screen = screenDashboard
	m.banner, m.notice = "", ""
	return m.reload()
}

// signOut ends the session and returns to the sign-in form.
func (m *Model) signOut(notice string) tea.Cmd {
	if err := m.sess.Logout(); err != nil {
		m.log.Warn("logout", zap.Error(err))
	}
	m.closeTiles()
	m.engine = nil
	m.drag = nil
	m.drawer = false
	m.user = session.User{}
	m.banner, m.notice = "", ""
	m.login = newAuthForm(modeLogin)
	if notice != "" {
		m.login.err = notice
	}
	m.screen = screenLogin
	return nil
}

// checkAuth signs out when err is the server rejecting the token. It
// reports whether it did.
func (m *Model) checkAuth(err error) bool {
	if err == nil || !api.IsUnauthorized(err) {
		return false
	}
	m.log.Info("token rejected, signing out", zap.Error(err))
	m.signOut(MsgSessionExpired)
	return true
}

// broadcast forwards msg to every tile.
func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	if len(m.tiles) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(m.tiles))
	for _, w := range m.tiles {
		cmds = append(cmds, w.Update(msg))
	}
	return tea.Batch(cmds...)
}

func isKey(msg tea.KeyMsg, bs ...key.Binding) bool {
	return key.Matches(msg, bs...)
}
