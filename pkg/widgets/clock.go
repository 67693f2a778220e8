package widgets

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/tileboard/pkg/app"
	"gitlab.com/tinyland/lab/tileboard/pkg/theme"
)

// Clock shows the local time, refreshed every interval. Its tick chain
// ends when the widget is closed.
type Clock struct {
	id       string
	now      func() time.Time
	interval time.Duration
	styles   theme.Styles

	current time.Time
	gen     int
	running bool
}

// NewClock returns a stopped clock; Init starts it.
func NewClock(id string, d Deps) *Clock {
	d = d.withDefaults()
	return &Clock{id: id, now: d.Now, interval: d.ClockInterval, styles: d.Styles, current: d.Now()}
}

func (c *Clock) ID() string          { return c.id }
func (c *Clock) Title() string       { return "Clock" }
func (c *Clock) MinSize() (int, int) { return 12, 3 }

// Running reports whether the tick chain is live.
func (c *Clock) Running() bool { return c.running }

func (c *Clock) source() string { return "clock:" + c.id }

// Init starts a fresh tick chain.
func (c *Clock) Init() tea.Cmd {
	c.gen++
	c.running = true
	c.current = c.now()
	return app.TickCmd(c.source(), c.gen, c.interval)
}

// Update advances the clock on its own ticks and schedules the next one.
// Ticks from an older chain or after Close are dropped.
func (c *Clock) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(app.TickEvent)
	if !ok || tick.Source != c.source() {
		return nil
	}
	if !c.running || tick.Gen != c.gen {
		return nil
	}
	c.current = c.now()
	return app.TickCmd(c.source(), c.gen, c.interval)
}

func (c *Clock) HandleKey(tea.KeyMsg) tea.Cmd { return nil }

// Close stops the tick chain.
func (c *Clock) Close() {
	c.running = false
	c.gen++
}

// View renders HH:MM:SS, the long date, and the weekday, centred.
func (c *Clock) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	t := c.current
	lines := []string{
		c.styles.Title.Render(t.Format("15:04:05")),
		c.styles.Body.Render(t.Format("January 2, 2006")),
		c.styles.Dim.Render(t.Format("Monday")),
	}
	if height < len(lines) {
		lines = lines[:height]
	}
	block := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.TrimRight(block, "\n"))
}
