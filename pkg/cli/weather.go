package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/tileboard/pkg/api"
	timg "gitlab.com/tinyland/lab/tileboard/pkg/image"
	"gitlab.com/tinyland/lab/tileboard/pkg/storage"
	"gitlab.com/tinyland/lab/tileboard/pkg/terminal"
	"gitlab.com/tinyland/lab/tileboard/pkg/weather"
	"gitlab.com/tinyland/lab/tileboard/pkg/widgets"
)

const iconCols, iconRows = 10, 5

func newWeatherCmd(app *App) *cobra.Command {
	var noIcon bool
	cmd := &cobra.Command{
		Use:   "weather [city]",
		Short: "Show current conditions (default: your location, else the configured city)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			ctx := cmd.Context()
			city := strings.Join(args, " ")
			if city == "" {
				city = app.defaultCity(ctx)
			}
			rep, err := weather.NewClient(app.client).Fetch(ctx, city)
			if err != nil {
				return app.checkAuth(err)
			}
			if app.JSON {
				return app.print(cmd, rep, "")
			}

			var icon string
			if !noIcon && isTerminal(cmd.OutOrStdout()) {
				icon = app.renderIcon(ctx, rep.Icon)
			}
			text := fmt.Sprintf("%s\n%s\n%s\nHumidity: %d%%  Wind: %.1f m/s\n",
				rep.Place(), rep.TempLine(), rep.Description(), rep.Humidity, rep.Wind)
			if icon != "" {
				text = icon + "\n" + text
			}
			return app.print(cmd, nil, "%s", text)
		},
	}
	cmd.Flags().BoolVar(&noIcon, "no-icon", false, "Skip the condition icon")
	return cmd
}

// defaultCity geolocates when enabled, else uses the configured city.
func (a *App) defaultCity(ctx context.Context) string {
	if loc := a.locator(); loc != nil {
		city, err := loc.Locate(ctx)
		if err == nil {
			return city
		}
		a.log.Info("geolocation failed, using default city", zap.Error(err))
	}
	return a.cfg.Widgets.DefaultCity
}

func (a *App) locator() *weather.Locator {
	if !a.cfg.Widgets.Geolocate {
		return nil
	}
	loc, err := weather.NewLocator(a.cfg.Widgets.GeolocationURL,
		api.WithTimeout(a.cfg.API.Timeout.Duration),
		api.WithLogger(a.log.Named("geolocate")),
	)
	if err != nil {
		a.log.Warn("geolocation disabled", zap.Error(err))
		return nil
	}
	return loc
}

// icons returns the icon fetcher backed by the on-disk cache, or nil when
// icons are off.
func (a *App) icons() *weather.Icons {
	if !a.cfg.Image.Icons {
		return nil
	}
	cache, err := storage.Open(filepath.Join(a.store.Dir(), "icons"))
	if err != nil {
		a.log.Warn("icon cache unavailable", zap.Error(err))
		cache = nil
	}
	return weather.NewIcons(a.cfg.Image.IconURL, cache, a.cfg.Image.IconTTL.Duration)
}

// renderIcon draws the condition icon with the terminal's best graphics
// protocol. Failures only cost the icon.
func (a *App) renderIcon(ctx context.Context, code string) string {
	icons := a.icons()
	if icons == nil || code == "" {
		return ""
	}
	r := timg.NewRenderer(*terminal.DetectCapabilities(), a.cfg.Image)
	if !r.Enabled() {
		return ""
	}
	img, err := icons.Fetch(ctx, code)
	if err != nil {
		a.log.Debug("icon fetch failed", zap.String("icon", code), zap.Error(err))
		return ""
	}
	out, err := r.Render(code, img, iconCols, iconRows)
	if err != nil {
		a.log.Debug("icon render failed", zap.String("icon", code), zap.Error(err))
		return ""
	}
	return out
}

// widgetDeps wires the widgets to the network and the terminal.
func (a *App) widgetDeps() widgets.Deps {
	d := widgets.DepsFromConfig(a.cfg)
	d.Weather = weather.NewClient(a.client)
	if loc := a.locator(); loc != nil {
		d.Locator = loc
	}
	if icons := a.icons(); icons != nil {
		d.Icons = icons
		d.Renderer = timg.NewInlineRenderer(a.cfg.Image)
	}
	d.Log = a.log.Named("widgets")
	return d
}
