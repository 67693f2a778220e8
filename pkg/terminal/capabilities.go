package terminal

import (
	"os"
	"sync"
)

// Capabilities is the cached terminal summary for the session.
type Capabilities struct {
	Term      Terminal
	Protocol  GraphicsProtocol
	Size      Size
	TrueColor bool
	SSH       bool
	Mux       bool // inside tmux or screen
}

var (
	cached     *Capabilities
	detectOnce sync.Once
)

// DetectCapabilities runs detection once and caches the result.
func DetectCapabilities() *Capabilities {
	detectOnce.Do(func() {
		cached = detect()
	})
	return cached
}

func detect() *Capabilities {
	t := Detect()
	trueColor := t.SupportsTrueColor()
	if !trueColor {
		ct := os.Getenv("COLORTERM")
		trueColor = ct == "truecolor" || ct == "24bit"
	}
	return &Capabilities{
		Term:      t,
		Protocol:  SelectProtocol(t),
		Size:      GetSize(),
		TrueColor: trueColor,
		SSH:       isSSH(),
		Mux:       os.Getenv("TMUX") != "" || os.Getenv("STY") != "",
	}
}
