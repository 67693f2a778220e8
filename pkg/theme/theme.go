// Package theme holds the dashboard colour palettes and the lipgloss
// styles derived from them.
package theme

import (
	"sort"
	"strings"
	"sync"
)

// Theme is a palette of hex colours.
type Theme struct {
	Name string

	Background string // e.g. "#1a1b26"
	Foreground string
	Dim        string // secondary text, placeholders
	Accent     string // buttons, active breakpoint

	Border      string // unfocused tile border
	BorderFocus string // focused tile border
	Title       string // tile title text
	Ghost       string // drag ghost outline

	OK    string // saved, informational notes
	Warn  string // pending save
	Error string // error banners, field errors

	HelpKey  string
	HelpDesc string
}

var (
	mu       sync.RWMutex
	registry = map[string]Theme{}
)

func init() {
	for _, t := range builtins() {
		Register(t)
	}
}

// Get returns a named theme, falling back to "default" if not found.
func Get(name string) Theme {
	mu.RLock()
	defer mu.RUnlock()
	if t, ok := registry[strings.ToLower(name)]; ok {
		return t
	}
	return registry["default"]
}

// Has reports whether a theme named name is registered.
func Has(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := registry[strings.ToLower(name)]
	return ok
}

// Names returns all registered theme names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a theme under its lowercase name.
func Register(t Theme) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(t.Name)] = t
}

func builtins() []Theme {
	return []Theme{
		{
			Name:       "default",
			Background: "#1e1e1e", Foreground: "#d4d4d4", Dim: "#6b6b6b", Accent: "#7C3AED",
			Border: "#3e3e3e", BorderFocus: "#7C3AED", Title: "#d4d4d4", Ghost: "#a78bfa",
			OK: "#4ec970", Warn: "#e5c07b", Error: "#e06c75",
			HelpKey: "#7C3AED", HelpDesc: "#6b6b6b",
		},
		{
			Name:       "gruvbox",
			Background: "#282828", Foreground: "#ebdbb2", Dim: "#928374", Accent: "#fe8019",
			Border: "#504945", BorderFocus: "#fe8019", Title: "#ebdbb2", Ghost: "#fabd2f",
			OK: "#b8bb26", Warn: "#fabd2f", Error: "#fb4934",
			HelpKey: "#fe8019", HelpDesc: "#928374",
		},
		{
			Name:       "nord",
			Background: "#2e3440", Foreground: "#eceff4", Dim: "#4c566a", Accent: "#88c0d0",
			Border: "#3b4252", BorderFocus: "#88c0d0", Title: "#e5e9f0", Ghost: "#81a1c1",
			OK: "#a3be8c", Warn: "#ebcb8b", Error: "#bf616a",
			HelpKey: "#88c0d0", HelpDesc: "#4c566a",
		},
		{
			Name:       "dracula",
			Background: "#282a36", Foreground: "#f8f8f2", Dim: "#6272a4", Accent: "#bd93f9",
			Border: "#44475a", BorderFocus: "#bd93f9", Title: "#f8f8f2", Ghost: "#ff79c6",
			OK: "#50fa7b", Warn: "#f1fa8c", Error: "#ff5555",
			HelpKey: "#bd93f9", HelpDesc: "#6272a4",
		},
	}
}
