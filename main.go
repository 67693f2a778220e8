// tileboard is a terminal client for a personal widget dashboard: notes,
// weather, and clock tiles on a responsive drag-and-drop grid, synced to
// a REST backend.
//
// Usage:
//
//	tileboard [command] [flags]
//
// With no command and a terminal on stdout it opens the dashboard;
// otherwise it prints the widget list. See `tileboard --help`.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/tinyland/lab/tileboard/pkg/cli"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date}, os.Args[1:])
	stop()
	os.Exit(code)
}
