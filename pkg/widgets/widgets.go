// Package widgets implements the tile contents of the dashboard: clock,
// notes, and weather. Each widget implements app.Widget and talks to the
// outside world only through commands and messages.
package widgets

import (
	"context"
	"image"
	"time"

	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/tileboard/pkg/app"
	"gitlab.com/tinyland/lab/tileboard/pkg/config"
	"gitlab.com/tinyland/lab/tileboard/pkg/dashboard"
	timg "gitlab.com/tinyland/lab/tileboard/pkg/image"
	"gitlab.com/tinyland/lab/tileboard/pkg/theme"
	"gitlab.com/tinyland/lab/tileboard/pkg/weather"
)

// Fetcher returns current conditions for a city.
type Fetcher interface {
	Fetch(ctx context.Context, city string) (weather.Report, error)
}

// Locator guesses the user's city.
type Locator interface {
	Locate(ctx context.Context) (string, error)
}

// IconFetcher downloads a condition icon by code.
type IconFetcher interface {
	Fetch(ctx context.Context, code string) (image.Image, error)
}

// Deps carries what widgets need from the shell. Zero values are
// replaced with defaults by New.
type Deps struct {
	Now           func() time.Time
	ClockInterval time.Duration
	SaveDebounce  time.Duration
	// RequestTimeout bounds every network call a widget starts.
	RequestTimeout time.Duration

	Weather     Fetcher
	Locator     Locator // nil disables geolocation
	Icons       IconFetcher
	Renderer    *timg.Renderer
	DefaultCity string

	Markdown      bool
	MarkdownStyle string // glamour standard style name

	Styles theme.Styles
	Log    *zap.Logger
}

// DepsFromConfig fills the tunables of Deps from cfg.
func DepsFromConfig(cfg *config.Config) Deps {
	return Deps{
		ClockInterval:  cfg.Widgets.ClockInterval.Duration,
		SaveDebounce:   cfg.Widgets.SaveDebounce.Duration,
		RequestTimeout: cfg.API.Timeout.Duration,
		DefaultCity:    cfg.Widgets.DefaultCity,
		Markdown:       cfg.Widgets.Markdown,
	}
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.ClockInterval <= 0 {
		d.ClockInterval = time.Second
	}
	if d.SaveDebounce <= 0 {
		d.SaveDebounce = time.Second
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 10 * time.Second
	}
	if d.DefaultCity == "" {
		d.DefaultCity = "Seoul"
	}
	if d.MarkdownStyle == "" {
		d.MarkdownStyle = "dark"
	}
	if d.Styles.Theme.Name == "" {
		d.Styles = theme.NewStyles(theme.Get("default"))
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return d
}

// New builds the widget for w. Unknown kinds get a placeholder so their
// tile keeps its place on the grid.
func New(w dashboard.Widget, d Deps) app.Widget {
	d = d.withDefaults()
	switch w.Kind {
	case dashboard.Notes:
		return NewNotes(w.ID, w.Config.Content(), d)
	case dashboard.Weather:
		return NewWeather(w.ID, w.Config.City(), d)
	case dashboard.Clock:
		return NewClock(w.ID, d)
	}
	return app.NewPlaceholder(w.ID, string(w.Kind))
}

func withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
