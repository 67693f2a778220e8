package widgets

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/tileboard/pkg/api"
	"gitlab.com/tinyland/lab/tileboard/pkg/app"
	"gitlab.com/tinyland/lab/tileboard/pkg/config"
	"gitlab.com/tinyland/lab/tileboard/pkg/dashboard"
	timg "gitlab.com/tinyland/lab/tileboard/pkg/image"
	"gitlab.com/tinyland/lab/tileboard/pkg/weather"
)

// run executes cmd and flattens batches. Only use it on commands that
// return promptly.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func find[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func keys(s string) []tea.KeyMsg {
	out := make([]tea.KeyMsg, 0, len(s))
	for _, r := range s {
		out = append(out, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return out
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, city string) (weather.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, city)
	if err := f.fail[city]; err != nil {
		return weather.Report{}, err
	}
	return weather.Report{City: city, Name: city, Country: "XX", Temp: 19, FeelsLike: 17,
		Humidity: 40, Desc: "clear sky", Icon: "01d", Wind: 3.1}, nil
}

type fakeLocator struct {
	city string
	err  error
}

func (l fakeLocator) Locate(context.Context) (string, error) { return l.city, l.err }

type fakeIcons struct{}

func (fakeIcons) Fetch(context.Context, string) (image.Image, error) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, A: 255})
	return img, nil
}

// --- dispatch ---

func TestNewDispatchesOnKind(t *testing.T) {
	tests := []struct {
		kind  dashboard.Kind
		title string
	}{
		{dashboard.Notes, "Notes"},
		{dashboard.Weather, "Weather"},
		{dashboard.Clock, "Clock"},
		{dashboard.Kind("stocks"), "Unknown"},
	}
	for _, tt := range tests {
		w := New(dashboard.Widget{ID: "1", Kind: tt.kind, Config: dashboard.Config{}}, Deps{})
		if w.Title() != tt.title || w.ID() != "1" {
			t.Errorf("New(%s) = %s/%s", tt.kind, w.ID(), w.Title())
		}
	}
}

func TestDepsFromConfig(t *testing.T) {
	d := DepsFromConfig(config.DefaultConfig())
	if d.SaveDebounce != time.Second || d.ClockInterval != time.Second || d.DefaultCity != "Seoul" {
		t.Errorf("deps = %+v", d)
	}
}

// --- clock ---

func fixedClock() (func() time.Time, *time.Time) {
	now := time.Date(2026, 3, 5, 12, 34, 56, 0, time.Local)
	return func() time.Time { return now }, &now
}

func TestClockTicksAndRenders(t *testing.T) {
	nowFn, now := fixedClock()
	c := NewClock("7", Deps{Now: nowFn})
	if c.Init() == nil || !c.Running() {
		t.Fatal("Init should start the tick chain")
	}
	*now = now.Add(time.Second)
	if cmd := c.Update(app.TickEvent{Source: "clock:7", Gen: 1}); cmd == nil {
		t.Error("live tick should schedule the next one")
	}
	out := ansi.Strip(c.View(24, 3))
	for _, want := range []string{"12:34:57", "March 5, 2026", "Thursday"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestClockIgnoresForeignAndStaleTicks(t *testing.T) {
	nowFn, _ := fixedClock()
	c := NewClock("7", Deps{Now: nowFn})
	c.Init()
	if c.Update(app.TickEvent{Source: "clock:8", Gen: 1}) != nil {
		t.Error("another clock's tick was accepted")
	}
	c.Init() // restart: gen 2
	if c.Update(app.TickEvent{Source: "clock:7", Gen: 1}) != nil {
		t.Error("tick from an old chain was accepted")
	}
}

func TestClockStopsOnClose(t *testing.T) {
	nowFn, _ := fixedClock()
	c := NewClock("7", Deps{Now: nowFn})
	c.Init()
	app.Close(c)
	if c.Running() {
		t.Error("clock still running after Close")
	}
	if c.Update(app.TickEvent{Source: "clock:7", Gen: 1}) != nil || c.Update(app.TickEvent{Source: "clock:7", Gen: 2}) != nil {
		t.Error("closed clock scheduled another tick")
	}
}

// --- notes ---

func TestNotesDebouncesSaves(t *testing.T) {
	n := NewNotes("3", "", Deps{})
	if n.debounce.Delay() != time.Second {
		t.Fatalf("debounce delay = %v, want 1s", n.debounce.Delay())
	}
	n.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if !n.Editing() {
		t.Fatal("enter should start editing")
	}
	var scheduled []app.DebounceMsg
	for _, k := range keys("hello") {
		if n.HandleKey(k) == nil {
			t.Fatal("keystroke scheduled nothing")
		}
		scheduled = append(scheduled, n.debounce.Live())
	}

	var saves []app.SaveConfigMsg
	for _, m := range scheduled {
		for _, msg := range run(n.Update(m)) {
			if s, ok := msg.(app.SaveConfigMsg); ok {
				saves = append(saves, s)
			}
		}
	}
	if len(saves) != 1 {
		t.Fatalf("got %d saves, want exactly 1", len(saves))
	}
	if saves[0].WidgetID != "3" || saves[0].Partial.Content() != "hello" {
		t.Errorf("save = %+v, want content hello for widget 3", saves[0])
	}
}

func TestNotesResyncsWhenIdle(t *testing.T) {
	n := NewNotes("3", "old", Deps{})
	n.SetConfig(dashboard.Config{"content": "from elsewhere"})
	if n.Content() != "from elsewhere" {
		t.Errorf("idle notes did not resync, content = %q", n.Content())
	}

	n.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	n.HandleKey(keys("!")[0])
	n.SetConfig(dashboard.Config{"content": "clobber"})
	if n.Content() == "clobber" {
		t.Error("resync overwrote the buffer mid-edit")
	}
}

func TestNotesSaveOutcome(t *testing.T) {
	n := NewNotes("3", "x", Deps{})
	n.Update(app.ConfigSavedMsg{WidgetID: "3", Err: &dashboard.Error{Kind: dashboard.UpdateError, Err: errors.New("boom")}})
	if !strings.Contains(ansi.Strip(n.View(40, 3)), "Failed to update widget config") {
		t.Error("save failure not shown")
	}
	n.Update(app.ConfigSavedMsg{WidgetID: "3", Config: dashboard.Config{"content": "x"}})
	if strings.Contains(ansi.Strip(n.View(40, 3)), "Failed") {
		t.Error("save success did not clear the error")
	}
}

func TestNotesViewPlaceholderAndMarkdown(t *testing.T) {
	empty := NewNotes("1", "", Deps{})
	if !strings.Contains(ansi.Strip(empty.View(40, 3)), notesPlaceholder) {
		t.Error("empty notes should show the placeholder")
	}
	md := NewNotes("2", "# Groceries\n\n- milk", Deps{Markdown: true})
	out := ansi.Strip(md.View(40, 6))
	if !strings.Contains(out, "Groceries") || !strings.Contains(out, "milk") {
		t.Errorf("markdown preview = %q", out)
	}
	for i, l := range strings.Split(md.View(40, 6), "\n") {
		if w := ansi.StringWidth(l); w != 40 {
			t.Errorf("line %d width %d, want 40", i, w)
		}
	}
}

// --- weather ---

func newWeather(city string, f *fakeFetcher, extra ...func(*Deps)) *Weather {
	d := Deps{Weather: f, SaveDebounce: time.Second}
	for _, fn := range extra {
		fn(&d)
	}
	return NewWeather("5", city, d)
}

func TestWeatherFetchesConfiguredCity(t *testing.T) {
	f := &fakeFetcher{}
	w := newWeather("Paris", f)
	for _, m := range run(w.Init()) {
		w.Update(m)
	}
	r, ok := w.Report()
	if !ok || r.City != "Paris" {
		t.Fatalf("report = %+v, %v", r, ok)
	}
	out := ansi.Strip(w.View(40, 8))
	for _, want := range []string{"Paris, XX", "19°C (feels like 17°C)", "Clear sky", "Humidity: 40%", "Wind: 3.1 m/s"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestWeatherDropsOutOfOrderResponses(t *testing.T) {
	f := &fakeFetcher{}
	w := newWeather("", f)
	paris := run(w.setTarget("Paris"))
	tokyo := run(w.setTarget("Tokyo"))

	for _, m := range tokyo {
		w.Update(m)
	}
	for _, m := range paris {
		w.Update(m) // late Paris response
	}
	r, _ := w.Report()
	if r.City != "Tokyo" || w.City() != "Tokyo" {
		t.Errorf("shown %q for target %q, want Tokyo", r.City, w.City())
	}
}

func TestWeatherEmptyInputCancelsPropagation(t *testing.T) {
	f := &fakeFetcher{}
	w := newWeather("Paris", f)
	for _, m := range run(w.Init()) {
		w.Update(m)
	}
	w.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	w.HandleKey(keys("x")[0])
	pending := w.debounce.Live()
	for range "Parisx" {
		w.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	if w.Input() != "" {
		t.Fatalf("input = %q, want empty", w.Input())
	}
	if w.Err() != EmptyCity {
		t.Errorf("err = %q, want %q", w.Err(), EmptyCity)
	}
	if w.Update(pending) != nil {
		t.Error("cancelled propagation still fired")
	}
	if len(f.calls) != 1 {
		t.Errorf("fetches = %v, want only the initial Paris", f.calls)
	}
}

func TestWeatherInputPropagatesAndPersists(t *testing.T) {
	f := &fakeFetcher{}
	w := newWeather("Paris", f)
	for _, m := range run(w.Init()) {
		w.Update(m)
	}
	w.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	for range "Paris" {
		w.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	for _, k := range keys("Oslo") {
		w.HandleKey(k)
	}
	if w.City() != "Paris" {
		t.Fatal("target changed before the debounce fired")
	}
	msgs := run(w.Update(w.debounce.Live()))
	save, ok := find[app.SaveConfigMsg](msgs)
	if !ok || save.Partial.City() != "Oslo" || save.WidgetID != "5" {
		t.Errorf("save = %+v, %v", save, ok)
	}
	for _, m := range msgs {
		w.Update(m)
	}
	if r, _ := w.Report(); r.City != "Oslo" {
		t.Errorf("report city = %q, want Oslo", r.City)
	}
}

func TestWeatherGeolocationFallback(t *testing.T) {
	f := &fakeFetcher{}
	w := newWeather("", f, func(d *Deps) {
		d.Locator = fakeLocator{err: &weather.GeolocationError{Err: errors.New("offline")}}
		d.DefaultCity = "Seoul"
	})
	msgs := run(w.Init())
	for len(msgs) > 0 {
		var next []tea.Msg
		for _, m := range msgs {
			next = append(next, run(w.Update(m))...)
		}
		msgs = next
	}
	if w.City() != "Seoul" || w.Input() != "Seoul" {
		t.Errorf("city = %q input = %q, want Seoul", w.City(), w.Input())
	}
	if !strings.Contains(ansi.Strip(w.View(50, 10)), "Location unavailable") {
		t.Error("fallback note not shown")
	}
}

func TestWeatherGeolocationSuccess(t *testing.T) {
	f := &fakeFetcher{}
	w := newWeather("", f, func(d *Deps) { d.Locator = fakeLocator{city: "Lyon"} })
	msgs := run(w.Init())
	loc, ok := find[locatedMsg](msgs)
	if !ok {
		t.Fatal("no geolocation result")
	}
	for _, m := range run(w.Update(loc)) {
		w.Update(m)
	}
	if r, _ := w.Report(); r.City != "Lyon" {
		t.Errorf("report city = %q, want Lyon", r.City)
	}
}

func TestWeatherFetchError(t *testing.T) {
	f := &fakeFetcher{fail: map[string]error{
		"Atlantis": &weather.Error{City: "Atlantis", Err: &api.StatusError{Status: 404, Msg: "city not found: Atlantis"}},
	}}
	w := newWeather("Atlantis", f)
	for _, m := range run(w.Init()) {
		w.Update(m)
	}
	if w.Err() != "city not found: Atlantis" {
		t.Errorf("err = %q", w.Err())
	}
	if _, ok := w.Report(); ok {
		t.Error("report should be cleared on failure")
	}
}

func TestWeatherRendersIcon(t *testing.T) {
	f := &fakeFetcher{}
	w := newWeather("Paris", f, func(d *Deps) {
		d.Icons = fakeIcons{}
		d.Renderer = timg.NewInlineRenderer(config.ImageConfig{Protocol: "auto"})
	})
	msgs := run(w.Init())
	for len(msgs) > 0 {
		var next []tea.Msg
		for _, m := range msgs {
			next = append(next, run(w.Update(m))...)
		}
		msgs = next
	}
	if w.icon == "" {
		t.Fatal("icon was not rendered")
	}
	if !strings.Contains(w.View(48, 8), "▀") {
		t.Error("icon missing from view")
	}
}

func TestNotesCloseDropsPendingSave(t *testing.T) {
	n := NewNotes("3", "", Deps{})
	n.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	n.HandleKey(keys("a")[0])
	pending := n.debounce.Live()

	n.Close()

	if _, ok := find[app.SaveConfigMsg](run(n.Update(pending))); ok {
		t.Error("closed notes widget still saved")
	}
}

func TestReplacedNotesIgnoresOldTimer(t *testing.T) {
	old := NewNotes("3", "", Deps{})
	old.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	old.HandleKey(keys("a")[0])
	stale := old.debounce.Live()
	old.Close()

	n := NewNotes("3", "", Deps{})
	n.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	n.HandleKey(keys("b")[0])

	if _, ok := find[app.SaveConfigMsg](run(n.Update(stale))); ok {
		t.Error("old instance's timer fired the new save early")
	}
	save, ok := find[app.SaveConfigMsg](run(n.Update(n.debounce.Live())))
	if !ok || save.Partial.Content() != "b" {
		t.Errorf("save = %+v, %v", save, ok)
	}
}

func TestWeatherCloseDropsPendingCity(t *testing.T) {
	f := &fakeFetcher{}
	w := newWeather("Paris", f)
	for _, m := range run(w.Init()) {
		w.Update(m)
	}
	w.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	w.HandleKey(keys("x")[0])
	pending := w.debounce.Live()

	w.Close()

	if _, ok := find[app.SaveConfigMsg](run(w.Update(pending))); ok {
		t.Error("closed weather widget still saved")
	}
}
