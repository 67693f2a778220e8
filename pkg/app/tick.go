package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickCmd returns a Cmd that delivers a TickEvent for source and gen
// after d.
func TickCmd(source string, gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickEvent{Source: source, Gen: gen, Time: t}
	})
}
