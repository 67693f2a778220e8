package config

import "sort"

// builtinPresets are starter dashboards available without any config.
var builtinPresets = map[string][]PresetWidget{
	"starter": {
		{Type: "clock"},
		{Type: "weather"},
		{Type: "notes", Content: "# Notes\n\nPress enter to edit."},
	},
	"focus": {
		{Type: "clock"},
		{Type: "notes"},
	},
	"travel": {
		{Type: "clock"},
		{Type: "weather", City: "Seoul"},
		{Type: "weather", City: "Paris"},
		{Type: "weather", City: "Tokyo"},
	},
}

// Preset returns the widgets for the named preset. Presets from the
// config file shadow the built-in ones.
func (c *Config) Preset(name string) ([]PresetWidget, bool) {
	if p, ok := c.Presets[name]; ok {
		return p, true
	}
	p, ok := builtinPresets[name]
	return p, ok
}

// PresetNames lists every preset name, sorted.
func (c *Config) PresetNames() []string {
	seen := map[string]bool{}
	for n := range builtinPresets {
		seen[n] = true
	}
	for n := range c.Presets {
		seen[n] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
