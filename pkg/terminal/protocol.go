package terminal

import (
	"os"
	"strings"
)

// GraphicsProtocol is how weather icons reach the screen.
type GraphicsProtocol int

const (
	ProtocolNone GraphicsProtocol = iota
	ProtocolKitty
	ProtocolITerm2
	ProtocolSixel
	// ProtocolHalfblocks paints two pixels per cell with ▀ and colours.
	ProtocolHalfblocks
)

var protocolNames = [...]string{
	ProtocolNone:       "none",
	ProtocolKitty:      "kitty",
	ProtocolITerm2:     "iterm2",
	ProtocolSixel:      "sixel",
	ProtocolHalfblocks: "halfblocks",
}

// protocolAliases maps every accepted config spelling to a protocol.
var protocolAliases = map[string]GraphicsProtocol{
	"none":        ProtocolNone,
	"off":         ProtocolNone,
	"disabled":    ProtocolNone,
	"kitty":       ProtocolKitty,
	"iterm2":      ProtocolITerm2,
	"sixel":       ProtocolSixel,
	"halfblocks":  ProtocolHalfblocks,
	"half-blocks": ProtocolHalfblocks,
	"unicode":     ProtocolHalfblocks,
}

func (p GraphicsProtocol) String() string {
	if int(p) >= 0 && int(p) < len(protocolNames) {
		return protocolNames[p]
	}
	return "unknown"
}

// Inline reports whether p draws with ordinary text cells and so can sit
// inside a composited tile.
func (p GraphicsProtocol) Inline() bool {
	return p == ProtocolHalfblocks
}

// ParseProtocol resolves a config value. ok is false for "", "auto" and
// unknown names, which all mean "detect".
func ParseProtocol(name string) (p GraphicsProtocol, ok bool) {
	p, ok = protocolAliases[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// SelectProtocol picks the richest protocol term understands for this
// session.
func SelectProtocol(term Terminal) GraphicsProtocol {
	return protocolFor(term, isSSH())
}

// SelectProtocolWithOverride honours a configured protocol name before
// falling back to detection.
func SelectProtocolWithOverride(term Terminal, override string) GraphicsProtocol {
	if p, ok := ParseProtocol(override); ok {
		return p
	}
	return SelectProtocol(term)
}

// protocolFor maps a terminal to its protocol. Remote sessions always get
// half blocks.
func protocolFor(term Terminal, remote bool) GraphicsProtocol {
	if remote {
		return ProtocolHalfblocks
	}
	switch term {
	case TermGhostty, TermKitty, TermWezTerm:
		return ProtocolKitty
	case TermITerm2:
		return ProtocolITerm2
	}
	return ProtocolHalfblocks
}

func isSSH() bool {
	for _, v := range []string{"SSH_TTY", "SSH_CONNECTION", "SSH_CLIENT"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}
