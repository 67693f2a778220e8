package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"bare": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			b := app.Build
			return app.print(cmd, map[string]string{
				"version": b.Version,
				"commit":  b.Commit,
				"date":    b.Date,
				"go":      runtime.Version(),
			}, "tileboard %s (commit %s, built %s, %s)\n", b.Version, b.Commit, b.Date, runtime.Version())
		},
	}
}
