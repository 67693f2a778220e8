// Package app is the widget framework the dashboard shell is built on:
// the Widget interface, the messages widgets exchange with the shell,
// tick and debounce helpers, and focus navigation.
//
// Widgets never touch the network. They ask for persistence with a
// SaveConfigMsg and the shell answers with a ConfigSavedMsg.
package app

import (
	"time"

	"gitlab.com/tinyland/lab/tileboard/pkg/dashboard"
)

// TickEvent is delivered by TickCmd. Gen lets a receiver drop ticks from
// a chain it has since restarted or stopped.
type TickEvent struct {
	Source string
	Gen    int
	Time   time.Time
}

// SaveConfigMsg asks the shell to merge Partial into the widget's config
// and persist it.
type SaveConfigMsg struct {
	WidgetID string
	Partial  dashboard.Config
}

// ConfigSavedMsg reports the outcome of a SaveConfigMsg. On success
// Config is the config the server now holds.
type ConfigSavedMsg struct {
	WidgetID string
	Config   dashboard.Config
	Err      error
}

// BannerMsg shows Text in the error banner. An empty Text clears it.
type BannerMsg struct {
	Text string
}

// NoticeMsg shows an informational note that is not an error.
type NoticeMsg struct {
	Text string
}
