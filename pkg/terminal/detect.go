// Package terminal detects the terminal emulator, its graphics protocol,
// and its size in cells and pixels. Detection reads the environment only
// and does no terminal I/O beyond the size ioctl.
package terminal

import (
	"os"
	"strings"
)

// Terminal identifies the terminal emulator in use.
type Terminal int

const (
	TermUnknown   Terminal = iota
	TermGhostty            // kitty graphics, true color
	TermKitty              // kitty graphics
	TermWezTerm            // kitty graphics, sixel, iterm2 images
	TermITerm2             // iterm2 images
	TermAlacritty          // true color, no graphics
	TermVTE                // GNOME Terminal, Tilix, and other VTE hosts
	TermVSCode             // VS Code integrated terminal
	TermTmux               // tmux multiplexer
	TermScreen             // GNU Screen multiplexer
	TermGeneric            // anything else
)

var terminalNames = [...]string{
	TermUnknown:   "unknown",
	TermGhostty:   "ghostty",
	TermKitty:     "kitty",
	TermWezTerm:   "wezterm",
	TermITerm2:    "iterm2",
	TermAlacritty: "alacritty",
	TermVTE:       "vte",
	TermVSCode:    "vscode",
	TermTmux:      "tmux",
	TermScreen:    "screen",
	TermGeneric:   "generic",
}

// String returns the human-readable name of the terminal.
func (t Terminal) String() string {
	if int(t) >= 0 && int(t) < len(terminalNames) {
		return terminalNames[t]
	}
	return "unknown"
}

// SupportsTrueColor reports whether the terminal renders 24-bit colour.
func (t Terminal) SupportsTrueColor() bool {
	switch t {
	case TermGhostty, TermKitty, TermWezTerm, TermITerm2,
		TermAlacritty, TermVTE, TermVSCode:
		return true
	}
	return false
}

// SupportsMouseSGR reports whether the terminal reports mouse events with
// SGR encoding, which the grid needs for drag positions past column 223.
func (t Terminal) SupportsMouseSGR() bool {
	switch t {
	case TermGhostty, TermKitty, TermWezTerm, TermITerm2,
		TermAlacritty, TermVTE, TermVSCode:
		return true
	}
	return false
}

// Detect identifies the terminal emulator from environment variables.
func Detect() Terminal {
	return detectFrom(os.Getenv)
}

// detectFrom checks, in order: TERM_PROGRAM, TERM, emulator-specific
// variables, VTE_VERSION, multiplexers, and LC_TERMINAL.
func detectFrom(getenv func(string) string) Terminal {
	switch strings.ToLower(getenv("TERM_PROGRAM")) {
	case "ghostty":
		return TermGhostty
	case "kitty":
		return TermKitty
	case "wezterm":
		return TermWezTerm
	case "iterm.app":
		return TermITerm2
	case "vscode":
		return TermVSCode
	case "alacritty":
		return TermAlacritty
	case "tmux":
		return TermTmux
	}

	term := getenv("TERM")
	switch {
	case term == "xterm-ghostty":
		return TermGhostty
	case term == "xterm-kitty":
		return TermKitty
	case strings.HasPrefix(term, "alacritty"):
		return TermAlacritty
	case strings.HasPrefix(term, "screen") && getenv("STY") != "":
		return TermScreen
	}

	switch {
	case getenv("KITTY_WINDOW_ID") != "":
		return TermKitty
	case getenv("ITERM_SESSION_ID") != "":
		return TermITerm2
	case getenv("WEZTERM_EXECUTABLE") != "":
		return TermWezTerm
	case getenv("VTE_VERSION") != "":
		return TermVTE
	case getenv("TMUX") != "":
		return TermTmux
	case getenv("STY") != "":
		return TermScreen
	case getenv("LC_TERMINAL") == "iTerm2":
		return TermITerm2
	}
	return TermGeneric
}
