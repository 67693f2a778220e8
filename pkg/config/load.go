package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appName = "tileboard"

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/tileboard/config.toml (then config.yaml)
//  2. ~/.config/tileboard/config.toml (then config.yaml)
//
// If no file exists, returns DefaultConfig() with env overrides applied.
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path. Files ending
// in .yaml or .yml are decoded as YAML, everything else as TOML.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err := LoadYAML(f)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
		return cfg, nil
	default:
		cfg, err := LoadFromReader(f)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
		return cfg, nil
	}
}

// LoadFromReader reads TOML configuration from an io.Reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadYAML reads YAML configuration from an io.Reader.
func LoadYAML(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none
// are named) into the environment. Variables already set win, and missing
// files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// DefaultConfig returns the default configuration with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000",
			Timeout: Duration{10 * time.Second},
		},
		Session: SessionConfig{
			StateDir: filepath.Join(xdgStateHome(home), appName),
		},
		Grid: GridConfig{
			RowHeight:   4,
			CellWidthPx: 8,
			Gap:         1,
		},
		Widgets: WidgetsConfig{
			SaveDebounce:   Duration{time.Second},
			ClockInterval:  Duration{time.Second},
			DefaultCity:    "Seoul",
			GeolocationURL: "https://ipapi.co/json/",
			Geolocate:      true,
			Markdown:       true,
		},
		Theme: ThemeConfig{
			Name: "default",
		},
		Image: ImageConfig{
			Protocol: "auto",
			Icons:    true,
			IconTTL:  Duration{24 * time.Hour},
			IconURL:  "https://openweathermap.org/img/wn/%s.png",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			File:   filepath.Join(xdgCacheHome(home), appName, appName+".log"),
		},
	}
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VITE_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("TILEBOARD_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("TILEBOARD_THEME"); v != "" {
		cfg.Theme.Name = v
	}
	if v := os.Getenv("TILEBOARD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TILEBOARD_DEFAULT_CITY"); v != "" {
		cfg.Widgets.DefaultCity = v
	}
	if v := os.Getenv("TILEBOARD_PROTOCOL"); v != "" {
		cfg.Image.Protocol = v
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var dirs []string

	xdg := xdgConfigHome(home)
	dirs = append(dirs, filepath.Join(xdg, appName))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		dirs = append(dirs, filepath.Join(defaultXDG, appName))
	}

	var paths []string
	for _, d := range dirs {
		paths = append(paths,
			filepath.Join(d, "config.toml"),
			filepath.Join(d, "config.yaml"),
		)
	}
	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgCacheHome returns XDG_CACHE_HOME or ~/.cache as fallback.
func xdgCacheHome(home string) string {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".cache")
}

// xdgStateHome returns XDG_STATE_HOME or ~/.local/state as fallback.
func xdgStateHome(home string) string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".local", "state")
}
