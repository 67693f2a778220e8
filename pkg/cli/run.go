package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/tileboard/pkg/terminal"
	"gitlab.com/tinyland/lab/tileboard/pkg/theme"
	"gitlab.com/tinyland/lab/tileboard/pkg/tui"
)

// runTUI takes over the terminal until the user quits.
func runTUI(ctx context.Context, app *App) error {
	styles, err := theme.Setup(app.cfg.Theme.Name, theme.Profile())
	if err != nil {
		app.log.Warn("theme file rejected, using default", zap.String("theme", app.cfg.Theme.Name), zap.Error(err))
	}

	deps := app.widgetDeps()
	if !termenv.HasDarkBackground() {
		deps.MarkdownStyle = "light"
	}

	zones := zone.New()
	m := tui.New(tui.Options{
		Session:    app.sess,
		Collection: app.collection(),
		Widgets:    deps,
		Styles:     styles,
		Grid:       app.cfg.Grid,
		CellWidth:  app.cfg.Grid.CellWidthPx,
		Timeout:    app.cfg.API.Timeout.Duration,
		Log:        app.log.Named("tui"),
		Zones:      zones,
	})

	caps := terminal.DetectCapabilities()
	app.log.Info("starting dashboard",
		zap.String("version", app.Build.Version),
		zap.Stringer("terminal", caps.Term),
	)
	if !caps.Term.SupportsMouseSGR() {
		app.log.Warn("terminal may misreport mouse positions past column 223")
	}
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
