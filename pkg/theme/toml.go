package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// tomlTheme is the on-disk shape of a custom theme.
type tomlTheme struct {
	Name string `toml:"name"`
	Base struct {
		Background string `toml:"background"`
		Foreground string `toml:"foreground"`
		Dim        string `toml:"dim"`
		Accent     string `toml:"accent"`
	} `toml:"base"`
	Tile struct {
		Border      string `toml:"border"`
		BorderFocus string `toml:"border_focus"`
		Title       string `toml:"title"`
		Ghost       string `toml:"ghost"`
	} `toml:"tile"`
	Status struct {
		OK    string `toml:"ok"`
		Warn  string `toml:"warn"`
		Error string `toml:"error"`
	} `toml:"status"`
	Help struct {
		Key  string `toml:"key"`
		Desc string `toml:"desc"`
	} `toml:"help"`
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsFile reports whether name refers to a theme file rather than a
// builtin theme name.
func IsFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".toml")
}

// LoadFile reads a TOML theme from path.
func LoadFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("theme: %w", err)
	}
	t, err := LoadFromTOML(data)
	if err != nil {
		return Theme{}, err
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return t, nil
}

// LoadFromTOML parses a theme. Colours left out are taken from the
// default theme; colours given must be #RRGGBB.
func LoadFromTOML(data []byte) (Theme, error) {
	var tt tomlTheme
	if err := toml.Unmarshal(data, &tt); err != nil {
		return Theme{}, fmt.Errorf("theme: parse TOML: %w", err)
	}
	t := Get("default")
	t.Name = tt.Name
	fields := []struct {
		name string
		src  string
		dst  *string
	}{
		{"base.background", tt.Base.Background, &t.Background},
		{"base.foreground", tt.Base.Foreground, &t.Foreground},
		{"base.dim", tt.Base.Dim, &t.Dim},
		{"base.accent", tt.Base.Accent, &t.Accent},
		{"tile.border", tt.Tile.Border, &t.Border},
		{"tile.border_focus", tt.Tile.BorderFocus, &t.BorderFocus},
		{"tile.title", tt.Tile.Title, &t.Title},
		{"tile.ghost", tt.Tile.Ghost, &t.Ghost},
		{"status.ok", tt.Status.OK, &t.OK},
		{"status.warn", tt.Status.Warn, &t.Warn},
		{"status.error", tt.Status.Error, &t.Error},
		{"help.key", tt.Help.Key, &t.HelpKey},
		{"help.desc", tt.Help.Desc, &t.HelpDesc},
	}
	for _, f := range fields {
		if f.src == "" {
			continue
		}
		if !hexColor.MatchString(f.src) {
			return Theme{}, fmt.Errorf("theme: invalid hex color %q for field %q (expected #RRGGBB)", f.src, f.name)
		}
		*f.dst = f.src
	}
	return t, nil
}
