package app

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DebounceMsg is delivered when a debounce delay elapses. Only the
// message carrying the latest Seq for its ID is live. Seq values are
// unique within the process, so a timer left over from a closed widget
// never matches its replacement.
type DebounceMsg struct {
	ID  string
	Seq int
}

// Debouncer implements trailing-edge debounce on the bubbletea event
// loop: every Trigger supersedes the previous one, and only the last
// timer to be scheduled fires.
type Debouncer struct {
	id      string
	delay   time.Duration
	seq     int
	pending bool
}

var debounceSeq atomic.Int64

func nextSeq() int { return int(debounceSeq.Add(1)) }

// NewDebouncer returns a debouncer whose messages carry id.
func NewDebouncer(id string, delay time.Duration) *Debouncer {
	return &Debouncer{id: id, delay: delay}
}

// Delay returns the debounce delay.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Pending reports whether a trigger is waiting to fire.
func (d *Debouncer) Pending() bool { return d.pending }

// Trigger schedules a fire after the delay and cancels any earlier one.
func (d *Debouncer) Trigger() tea.Cmd {
	d.seq = nextSeq()
	d.pending = true
	id, seq := d.id, d.seq
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return DebounceMsg{ID: id, Seq: seq}
	})
}

// Live returns the message that would fire now. It is only meaningful
// while Pending.
func (d *Debouncer) Live() DebounceMsg {
	return DebounceMsg{ID: d.id, Seq: d.seq}
}

// Cancel drops the pending trigger, if any.
func (d *Debouncer) Cancel() {
	d.seq = nextSeq()
	d.pending = false
}

// Fire reports whether msg is the live trigger for this debouncer and,
// if so, consumes it. Superseded and foreign messages return false.
func (d *Debouncer) Fire(msg DebounceMsg) bool {
	if msg.ID != d.id || msg.Seq != d.seq || !d.pending {
		return false
	}
	d.pending = false
	return true
}
