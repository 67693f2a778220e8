package widgets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/tileboard/pkg/app"
	"gitlab.com/tinyland/lab/tileboard/pkg/components"
	"gitlab.com/tinyland/lab/tileboard/pkg/dashboard"
	"gitlab.com/tinyland/lab/tileboard/pkg/weather"
)

// EmptyCity replaces the report when the city field is cleared.
const EmptyCity = "Please enter a city name."

const (
	iconCols = 8
	iconRows = 4
)

type weatherMsg struct {
	id     string
	city   string
	report weather.Report
	err    error
}

type locatedMsg struct {
	id   string
	city string
	err  error
}

type iconMsg struct {
	id   string
	code string
	out  string
	err  error
}

// Weather shows current conditions for a city. The city being shown (the
// target) and the text in the city field are separate: typing changes the
// field at once and the target only after the debounce delay.
type Weather struct {
	id   string
	deps Deps

	city     string // target
	input    textinput.Model
	debounce *app.Debouncer
	spin     spinner.Model

	report  *weather.Report
	loading bool
	err     string
	notice  string

	iconCode string
	icon     string
}

// NewWeather returns a weather widget. An empty city means the city is
// resolved on Init: geolocation first, then the default city.
func NewWeather(id, city string, d Deps) *Weather {
	d = d.withDefaults()
	in := textinput.New()
	in.Placeholder = "City"
	in.Prompt = ""
	in.CharLimit = 80
	in.SetValue(city)
	return &Weather{
		id:       id,
		deps:     d,
		city:     "",
		input:    in,
		debounce: app.NewDebouncer("weather:"+id, d.SaveDebounce),
		spin:     spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
}

func (w *Weather) ID() string          { return w.id }
func (w *Weather) Title() string       { return "Weather" }
func (w *Weather) MinSize() (int, int) { return 20, 4 }

// Close drops a pending city change and stops the spinner.
func (w *Weather) Close() {
	w.debounce.Cancel()
	w.loading = false
}

// City returns the city currently being shown.
func (w *Weather) City() string { return w.city }

// Input returns the text in the city field.
func (w *Weather) Input() string { return w.input.Value() }

// Report returns the report on display, if any.
func (w *Weather) Report() (weather.Report, bool) {
	if w.report == nil {
		return weather.Report{}, false
	}
	return *w.report, true
}

// Err returns the message shown in place of a report.
func (w *Weather) Err() string { return w.err }

// Editing reports whether the city field has the cursor.
func (w *Weather) Editing() bool { return w.input.Focused() }

// SetFocused leaves the city field when the tile loses focus.
func (w *Weather) SetFocused(focused bool) tea.Cmd {
	if !focused {
		w.input.Blur()
	}
	return nil
}

// Init resolves the starting city: the configured one, else the
// geolocated one, else the default.
func (w *Weather) Init() tea.Cmd {
	if c := strings.TrimSpace(w.input.Value()); c != "" {
		return w.setTarget(c)
	}
	if w.deps.Locator == nil {
		w.input.SetValue(w.deps.DefaultCity)
		return w.setTarget(w.deps.DefaultCity)
	}
	w.loading = true
	loc, id, timeout := w.deps.Locator, w.id, w.deps.RequestTimeout
	return tea.Batch(w.spin.Tick, func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		city, err := loc.Locate(ctx)
		return locatedMsg{id: id, city: city, err: err}
	})
}

// setTarget makes city the target and starts fetching it.
func (w *Weather) setTarget(city string) tea.Cmd {
	w.city = city
	w.loading = true
	w.err = ""
	f, id, timeout := w.deps.Weather, w.id, w.deps.RequestTimeout
	if f == nil {
		w.loading = false
		w.err = weather.FetchFailed
		return nil
	}
	return tea.Batch(w.spin.Tick, func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		r, err := f.Fetch(ctx, city)
		return weatherMsg{id: id, city: city, report: r, err: err}
	})
}

// HandleKey edits the city field. Enter or "/" starts editing; while
// editing, enter applies the city at once and esc stops editing.
func (w *Weather) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if !w.input.Focused() {
		if msg.Type == tea.KeyEnter || msg.String() == "/" {
			return w.input.Focus()
		}
		return nil
	}
	switch msg.Type {
	case tea.KeyEsc:
		w.input.Blur()
		return nil
	case tea.KeyEnter:
		w.input.Blur()
		if !w.debounce.Pending() {
			return nil
		}
		w.debounce.Cancel()
		return w.propagate()
	}
	before := w.input.Value()
	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	if w.input.Value() == before {
		return cmd
	}
	if strings.TrimSpace(w.input.Value()) == "" {
		w.debounce.Cancel()
		w.err = EmptyCity
		w.report = nil
		return cmd
	}
	if w.err == EmptyCity {
		w.err = ""
	}
	return tea.Batch(cmd, w.debounce.Trigger())
}

// propagate moves the field's city to the target and persists it.
func (w *Weather) propagate() tea.Cmd {
	city := strings.TrimSpace(w.input.Value())
	if city == "" {
		w.err = EmptyCity
		w.report = nil
		return nil
	}
	if city == w.city && w.report != nil {
		return nil
	}
	id := w.id
	save := func() tea.Msg {
		return app.SaveConfigMsg{WidgetID: id, Partial: dashboard.Config{"city": city}}
	}
	return tea.Batch(w.setTarget(city), save)
}

// Update applies fetch, geolocation, icon, and debounce results for this
// widget. A weather response for anything but the current target is
// dropped.
func (w *Weather) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case app.DebounceMsg:
		if !w.debounce.Fire(msg) {
			return nil
		}
		return w.propagate()

	case locatedMsg:
		if msg.id != w.id || w.city != "" {
			return nil
		}
		city := msg.city
		if msg.err != nil {
			w.deps.Log.Info("geolocation failed, using default city",
				zap.String("widget_id", w.id), zap.Error(msg.err))
			city = w.deps.DefaultCity
			w.notice = fmt.Sprintf("Location unavailable, showing %s.", city)
		}
		if !w.input.Focused() && strings.TrimSpace(w.input.Value()) == "" {
			w.input.SetValue(city)
		}
		return w.setTarget(city)

	case weatherMsg:
		if msg.id != w.id || msg.city != w.city {
			return nil
		}
		w.loading = false
		if w.err == EmptyCity {
			return nil
		}
		if msg.err != nil {
			w.report = nil
			w.err = fetchMessage(msg.err)
			w.deps.Log.Debug("weather fetch failed",
				zap.String("widget_id", w.id), zap.String("city", msg.city), zap.Error(msg.err))
			return nil
		}
		r := msg.report
		w.report = &r
		w.err = ""
		return w.fetchIcon(r.Icon)

	case iconMsg:
		if msg.id != w.id || msg.code != w.iconCode {
			return nil
		}
		if msg.err != nil {
			w.deps.Log.Debug("icon unavailable", zap.String("code", msg.code), zap.Error(msg.err))
			w.icon = ""
			return nil
		}
		w.icon = msg.out
		return nil

	case spinner.TickMsg:
		if !w.loading {
			return nil
		}
		var cmd tea.Cmd
		w.spin, cmd = w.spin.Update(msg)
		return cmd
	}

	if w.input.Focused() {
		var cmd tea.Cmd
		w.input, cmd = w.input.Update(msg)
		return cmd
	}
	return nil
}

func (w *Weather) fetchIcon(code string) tea.Cmd {
	if code == "" || w.deps.Icons == nil || w.deps.Renderer == nil || !w.deps.Renderer.Enabled() {
		return nil
	}
	if code == w.iconCode && w.icon != "" {
		return nil
	}
	w.iconCode = code
	icons, r, id, timeout := w.deps.Icons, w.deps.Renderer, w.id, w.deps.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		img, err := icons.Fetch(ctx, code)
		if err != nil {
			return iconMsg{id: id, code: code, err: err}
		}
		out, err := r.Render(code, img, iconCols, iconRows)
		return iconMsg{id: id, code: code, out: out, err: err}
	}
}

// SetConfig follows a city changed elsewhere unless the user is typing.
func (w *Weather) SetConfig(cfg dashboard.Config) tea.Cmd {
	city := strings.TrimSpace(cfg.City())
	if city == "" || city == w.city || w.input.Focused() || w.debounce.Pending() {
		return nil
	}
	w.input.SetValue(city)
	return w.setTarget(city)
}

func fetchMessage(err error) string {
	var we *weather.Error
	if errors.As(err, &we) {
		return we.Message()
	}
	return weather.FetchFailed
}

// View renders the city field, then the report or its error.
func (w *Weather) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	st := w.deps.Styles
	w.input.Width = max(width-7, 1)
	lines := []string{st.Label.Render("City: ") + w.input.View()}

	switch {
	case w.loading:
		lines = append(lines, w.spin.View()+st.Dim.Render(" Loading…"))
	case w.err != "":
		lines = append(lines, st.FieldErr.Render(w.err))
	}
	if w.notice != "" {
		lines = append(lines, st.Notice.Render(w.notice))
	}

	if w.report != nil && !w.loading && w.err == "" {
		r := w.report
		text := []string{
			st.Title.Render(r.Place()),
			st.Body.Render("Temperature: " + r.TempLine()),
			st.Body.Render("Weather: " + r.Description()),
			st.Body.Render("Humidity: " + strconv.Itoa(r.Humidity) + "%"),
			st.Body.Render("Wind: " + strconv.FormatFloat(r.Wind, 'f', -1, 64) + " m/s"),
		}
		if w.icon != "" && width >= 36 {
			textW := width - iconCols - 1
			block := lipgloss.JoinHorizontal(lipgloss.Top,
				strings.Join(components.Fit(text, textW, len(text)), "\n"),
				" ",
				w.icon,
			)
			lines = append(lines, components.Lines(block)...)
		} else {
			lines = append(lines, text...)
		}
	}
	return strings.Join(components.Fit(lines, width, height), "\n")
}
