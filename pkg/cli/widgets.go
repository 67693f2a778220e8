package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"gitlab.com/tinyland/lab/tileboard/pkg/api"
	"gitlab.com/tinyland/lab/tileboard/pkg/dashboard"
)

func newWidgetsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "widgets",
		Aliases: []string{"w"},
		Short:   "List and edit the dashboard's widgets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listWidgets(cmd, app)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List widgets with their canonical layout",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listWidgets(cmd, app)
		},
	})
	cmd.AddCommand(newWidgetsAddCmd(app))
	cmd.AddCommand(newWidgetsRmCmd(app))
	cmd.AddCommand(newWidgetsSeedCmd(app))
	return cmd
}

// loaded restores the session and fetches the collection.
func (a *App) loaded(cmd *cobra.Command) (*dashboard.Collection, error) {
	if err := a.requireSession(); err != nil {
		return nil, err
	}
	coll := a.collection()
	if err := coll.Load(cmd.Context()); err != nil {
		return nil, a.checkAuth(err)
	}
	return coll, nil
}

// checkAuth drops the stored session when the server rejected its token.
func (a *App) checkAuth(err error) error {
	if api.IsUnauthorized(err) {
		_ = a.sess.Logout()
	}
	return err
}

func listWidgets(cmd *cobra.Command, app *App) error {
	coll, err := app.loaded(cmd)
	if err != nil {
		return err
	}
	ws := coll.Widgets()
	if app.JSON {
		return app.print(cmd, ws, "")
	}
	if len(ws) == 0 {
		return app.print(cmd, nil, "No widgets yet. Add one with `tileboard widgets add <notes|weather|clock>`.\n")
	}
	rows := make([][]string, len(ws))
	for i, w := range ws {
		r := w.Layout
		rows[i] = []string{
			w.ID, string(w.Kind),
			strconv.Itoa(r.X), strconv.Itoa(r.Y), strconv.Itoa(r.W), strconv.Itoa(r.H),
			detail(w),
		}
	}
	return app.print(cmd, nil, "%s", table([]string{"ID", "TYPE", "X", "Y", "W", "H", "DETAIL"}, rows))
}

// detail is the one-line summary of a widget's config.
func detail(w dashboard.Widget) string {
	switch w.Kind {
	case dashboard.Weather:
		return w.Config.City()
	case dashboard.Notes:
		first, _, _ := strings.Cut(strings.TrimSpace(w.Config.Content()), "\n")
		return ansi.Truncate(first, 40, "…")
	}
	return ""
}

func newWidgetsAddCmd(app *App) *cobra.Command {
	var city, content string
	cmd := &cobra.Command{
		Use:       "add <notes|weather|clock>",
		Short:     "Add a widget at the bottom of the grid",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := dashboard.ParseKind(args[0])
			if err != nil {
				return err
			}
			coll, err := app.loaded(cmd)
			if err != nil {
				return err
			}
			cfg := dashboard.Config{}
			if city != "" {
				cfg["city"] = city
			}
			if content != "" {
				cfg["content"] = content
			}
			w, err := coll.Add(cmd.Context(), kind, cfg)
			if err != nil {
				return app.checkAuth(err)
			}
			return printAdded(cmd, app, w)
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "City for a weather widget")
	cmd.Flags().StringVar(&content, "content", "", "Initial markdown for a notes widget")
	return cmd
}

func kindNames() []string {
	kinds := dashboard.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

func printAdded(cmd *cobra.Command, app *App, w dashboard.Widget) error {
	r := w.Layout
	return app.print(cmd, w, "Added %s %s at (%d,%d) %dx%d\n", w.Kind, w.ID, r.X, r.Y, r.W, r.H)
}

func newWidgetsRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete widgets",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := app.loaded(cmd)
			if err != nil {
				return err
			}
			removed := make([]string, 0, len(args))
			for _, id := range args {
				if _, ok := coll.Widget(id); !ok {
					return fmt.Errorf("widget %s not found", id)
				}
				if err := coll.Remove(cmd.Context(), id); err != nil {
					return app.checkAuth(err)
				}
				removed = append(removed, id)
			}
			return app.print(cmd, map[string]any{"removed": removed}, "Removed %s\n", strings.Join(removed, ", "))
		},
	}
}

func newWidgetsSeedCmd(app *App) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "seed [preset]",
		Short: "Add a preset set of widgets (default: starter)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				names := app.cfg.PresetNames()
				return app.print(cmd, names, "%s\n", strings.Join(names, "\n"))
			}
			name := "starter"
			if len(args) == 1 {
				name = args[0]
			}
			preset, ok := app.cfg.Preset(name)
			if !ok {
				return fmt.Errorf("unknown preset %q (have: %s)", name, strings.Join(app.cfg.PresetNames(), ", "))
			}
			coll, err := app.loaded(cmd)
			if err != nil {
				return err
			}
			added := make([]dashboard.Widget, 0, len(preset))
			for _, p := range preset {
				kind, err := dashboard.ParseKind(p.Type)
				if err != nil {
					return err
				}
				cfg := dashboard.Config{}
				if p.City != "" {
					cfg["city"] = p.City
				}
				if p.Content != "" {
					cfg["content"] = p.Content
				}
				w, err := coll.Add(cmd.Context(), kind, cfg)
				if err != nil {
					return app.checkAuth(err)
				}
				added = append(added, w)
				if !app.JSON {
					if err := printAdded(cmd, app, w); err != nil {
						return err
					}
				}
			}
			if app.JSON {
				return app.print(cmd, added, "")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List preset names")
	return cmd
}
