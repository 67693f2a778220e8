// Package dashboard holds the signed-in user's widgets and their layouts,
// and keeps the canonical layout in sync with the backend.
package dashboard

import (
	"fmt"
	"strings"

	"gitlab.com/tinyland/lab/tileboard/pkg/grid"
)

// Kind is a widget type.
type Kind string

const (
	Notes   Kind = "notes"
	Weather Kind = "weather"
	Clock   Kind = "clock"
)

// Kinds lists every supported kind in toolbar order.
func Kinds() []Kind { return []Kind{Notes, Weather, Clock} }

// ParseKind accepts a kind name in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("dashboard: unknown widget type %q", s)
	}
	return k, nil
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	switch k {
	case Notes, Weather, Clock:
		return true
	}
	return false
}

// Title is the label shown in the tile header.
func (k Kind) Title() string {
	switch k {
	case Notes:
		return "Notes"
	case Weather:
		return "Weather"
	case Clock:
		return "Clock"
	}
	if k == "" {
		return "Widget"
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// fallbackSize covers kinds the table does not know.
var fallbackSize = grid.Size{W: 3, H: 2, MinW: 2, MinH: 1}

// DefaultSize is the footprint of a new tile of kind k.
func DefaultSize(k Kind) grid.Size {
	switch k {
	case Notes:
		return grid.Size{W: 4, H: 3, MinW: 3, MinH: 2}
	case Weather:
		return grid.Size{W: 3, H: 2, MinW: 2, MinH: 2}
	case Clock:
		return grid.Size{W: 2, H: 1, MinW: 2, MinH: 1}
	}
	return fallbackSize
}

// DefaultConfig is the config a new widget of kind k starts with.
func DefaultConfig(k Kind) Config {
	switch k {
	case Notes:
		return Config{"content": ""}
	case Weather:
		return Config{"city": ""}
	case Clock:
		return Config{}
	}
	return Config{}
}
