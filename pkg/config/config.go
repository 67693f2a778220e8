// Package config provides TOML and YAML configuration for tileboard.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config is the full client configuration.
type Config struct {
	API     APIConfig                 `toml:"api" yaml:"api"`
	Session SessionConfig             `toml:"session" yaml:"session"`
	Grid    GridConfig                `toml:"grid" yaml:"grid"`
	Widgets WidgetsConfig             `toml:"widgets" yaml:"widgets"`
	Theme   ThemeConfig               `toml:"theme" yaml:"theme"`
	Image   ImageConfig               `toml:"image" yaml:"image"`
	Log     LogConfig                 `toml:"log" yaml:"log"`
	Presets map[string][]PresetWidget `toml:"presets" yaml:"presets"`
}

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL string   `toml:"base_url" yaml:"base_url"`
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// SessionConfig says where the session token and cached icons live.
type SessionConfig struct {
	StateDir string `toml:"state_dir" yaml:"state_dir"`
}

// GridConfig maps grid units to terminal cells.
type GridConfig struct {
	// RowHeight is the number of terminal lines per grid row.
	RowHeight int `toml:"row_height" yaml:"row_height"`
	// CellWidthPx is the assumed pixel width of one terminal column when
	// the terminal does not report its pixel size.
	CellWidthPx int `toml:"cell_width_px" yaml:"cell_width_px"`
	// Gap is the number of blank cells between adjacent grid columns.
	Gap int `toml:"gap" yaml:"gap"`
}

// WidgetsConfig tunes the built-in widgets.
type WidgetsConfig struct {
	SaveDebounce   Duration `toml:"save_debounce" yaml:"save_debounce"`
	ClockInterval  Duration `toml:"clock_interval" yaml:"clock_interval"`
	DefaultCity    string   `toml:"default_city" yaml:"default_city"`
	GeolocationURL string   `toml:"geolocation_url" yaml:"geolocation_url"`
	Geolocate      bool     `toml:"geolocate" yaml:"geolocate"`
	Markdown       bool     `toml:"markdown" yaml:"markdown"`
}

// ThemeConfig selects a palette.
type ThemeConfig struct {
	Name string `toml:"name" yaml:"name"`
}

// ImageConfig controls weather icon rendering.
type ImageConfig struct {
	// Protocol is "auto", "kitty", "iterm2", "sixel", "halfblocks", or "none".
	Protocol string   `toml:"protocol" yaml:"protocol"`
	Icons    bool     `toml:"icons" yaml:"icons"`
	IconTTL  Duration `toml:"icon_ttl" yaml:"icon_ttl"`
	IconURL  string   `toml:"icon_url" yaml:"icon_url"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "console" or "json"
	File   string `toml:"file" yaml:"file"`
}

// PresetWidget is one widget of a starter dashboard.
type PresetWidget struct {
	Type    string `toml:"type" yaml:"type"`
	City    string `toml:"city,omitempty" yaml:"city,omitempty"`
	Content string `toml:"content,omitempty" yaml:"content,omitempty"`
}

var validProtocols = map[string]bool{
	"auto": true, "kitty": true, "iterm2": true, "sixel": true, "halfblocks": true, "none": true,
}

var validWidgetTypes = map[string]bool{"notes": true, "weather": true, "clock": true}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is empty"))
	}
	if c.Grid.RowHeight < 3 {
		errs = append(errs, fmt.Errorf("grid.row_height %d is below 3", c.Grid.RowHeight))
	}
	if c.Grid.CellWidthPx <= 0 {
		errs = append(errs, fmt.Errorf("grid.cell_width_px %d must be positive", c.Grid.CellWidthPx))
	}
	if c.Grid.Gap < 0 {
		errs = append(errs, fmt.Errorf("grid.gap %d is negative", c.Grid.Gap))
	}
	if !validProtocols[strings.ToLower(c.Image.Protocol)] {
		errs = append(errs, fmt.Errorf("image.protocol %q is unknown", c.Image.Protocol))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is unknown", c.Log.Format))
	}
	for name, widgets := range c.Presets {
		for i, w := range widgets {
			if !validWidgetTypes[w.Type] {
				errs = append(errs, fmt.Errorf("presets.%s[%d]: widget type %q is unknown", name, i, w.Type))
			}
		}
	}
	return errors.Join(errs...)
}
