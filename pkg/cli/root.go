// Package cli holds the tileboard commands. With no subcommand and a
// terminal on stdout it runs the dashboard; every other command is a
// scriptable view of the same session and widgets.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/tileboard/pkg/api"
	"gitlab.com/tinyland/lab/tileboard/pkg/config"
	"gitlab.com/tinyland/lab/tileboard/pkg/dashboard"
	"gitlab.com/tinyland/lab/tileboard/pkg/logging"
	"gitlab.com/tinyland/lab/tileboard/pkg/session"
	"gitlab.com/tinyland/lab/tileboard/pkg/storage"
	"gitlab.com/tinyland/lab/tileboard/pkg/weather"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// ErrNotSignedIn is returned by commands that need a stored session.
var ErrNotSignedIn = errors.New("not signed in; run `tileboard login`")

// App is the state shared by every command of one invocation.
type App struct {
	ConfigPath string
	APIURL     string
	Verbose    bool
	JSON       bool
	Build      BuildInfo

	cfg    *config.Config
	log    *zap.Logger
	store  *storage.Store
	client *api.Client
	sess   *session.Store
}

// NewRootCmd builds the command tree.
func NewRootCmd(build BuildInfo) *cobra.Command {
	app := &App{Build: build}

	cmd := &cobra.Command{
		Use:           "tileboard",
		Short:         "Terminal widget dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Open the dashboard
  tileboard

  # Sign in from a script
  printf '%s\n' "$PASSWORD" | tileboard login --email ann@example.com

  # Add a weather tile for Paris
  tileboard widgets add weather --city Paris
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if isTerminal(cmd.OutOrStdout()) {
				return runTUI(cmd.Context(), app)
			}
			return listWidgets(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations["bare"] == "true" {
			return nil
		}
		// The dashboard owns the terminal, so its logs stay in the file.
		stderr := app.Verbose && !(cmd == cmd.Root() && isTerminal(cmd.OutOrStdout()))
		return app.setup(stderr)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.close()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TILEBOARD_CONFIG", ""), "Path to config file (.toml, .yaml)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "Backend base URL (overrides config and TILEBOARD_API_URL)")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging, also to stderr")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print JSON instead of text")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newWidgetsCmd(app))
	cmd.AddCommand(newWeatherCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, build BuildInfo, args []string) int {
	cmd := NewRootCmd(build)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "tileboard:", userMessage(err))
		return 1
	}
	return 0
}

// setup loads configuration and opens the session. It is idempotent.
func (a *App) setup(stderr bool) error {
	if a.cfg != nil {
		return nil
	}
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	var (
		cfg *config.Config
		err error
	)
	if a.ConfigPath != "" {
		cfg, err = config.LoadFromFile(a.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.APIURL != "" {
		cfg.API.BaseURL = a.APIURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	opts := logging.Options{Stderr: stderr}
	if a.Verbose {
		opts.Level = "debug"
	}
	log, err := logging.New(cfg.Log, opts)
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Session.StateDir)
	if err != nil {
		return fmt.Errorf("open state dir: %w", err)
	}
	client, err := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout.Duration),
		api.WithLogger(log),
		api.WithUserAgent("tileboard/"+a.Build.Version),
	)
	if err != nil {
		return err
	}

	a.cfg, a.log, a.store, a.client = cfg, log, store, client
	a.sess = session.New(client, store, log.Named("session"))
	log.Debug("configured",
		zap.String("api", cfg.API.BaseURL),
		zap.String("state_dir", cfg.Session.StateDir),
	)
	return nil
}

func (a *App) close() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// requireSession restores the stored session or fails with
// ErrNotSignedIn.
func (a *App) requireSession() error {
	ok, err := a.sess.Restore()
	if errors.Is(err, session.ErrExpired) {
		return fmt.Errorf("session expired; run `tileboard login`")
	}
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotSignedIn
	}
	return nil
}

func (a *App) collection() *dashboard.Collection {
	return dashboard.NewCollection(dashboard.NewRESTBackend(a.client), a.log.Named("dashboard"))
}

// userMessage is the text shown for err: the server's message when there
// is one.
func userMessage(err error) string {
	var ae *session.AuthError
	if errors.As(err, &ae) {
		return ae.Msg
	}
	var de *dashboard.Error
	if errors.As(err, &de) {
		return de.Message()
	}
	var we *weather.Error
	if errors.As(err, &we) {
		return we.Message()
	}
	if api.IsUnauthorized(err) {
		return "session rejected by the server; run `tileboard login`"
	}
	return err.Error()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
