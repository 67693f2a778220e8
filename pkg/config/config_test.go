package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"VITE_API_URL", "TILEBOARD_API_URL", "TILEBOARD_THEME",
		"TILEBOARD_LOG_LEVEL", "TILEBOARD_DEFAULT_CITY", "TILEBOARD_PROTOCOL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:5000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Widgets.SaveDebounce.Duration != time.Second {
		t.Errorf("SaveDebounce = %v", cfg.Widgets.SaveDebounce)
	}
	if cfg.Widgets.DefaultCity != "Seoul" {
		t.Errorf("DefaultCity = %q", cfg.Widgets.DefaultCity)
	}
}

func TestLoadFromReaderTOML(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromReader(strings.NewReader(`
[api]
base_url = "https://dash.example.com"
timeout = "3s"

[grid]
row_height = 5

[widgets]
save_debounce = "250ms"
default_city = "Lisbon"

[[presets.mine]]
type = "clock"
`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.API.BaseURL != "https://dash.example.com" || cfg.API.Timeout.Duration != 3*time.Second {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Grid.RowHeight != 5 || cfg.Grid.CellWidthPx != 8 {
		t.Errorf("grid = %+v (defaults should survive partial sections)", cfg.Grid)
	}
	if cfg.Widgets.SaveDebounce.Duration != 250*time.Millisecond || cfg.Widgets.DefaultCity != "Lisbon" {
		t.Errorf("widgets = %+v", cfg.Widgets)
	}
	if p, ok := cfg.Preset("mine"); !ok || len(p) != 1 || p[0].Type != "clock" {
		t.Errorf("preset mine = %+v, %v", p, ok)
	}
}

func TestLoadYAMLByExtension(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte("api:\n  base_url: http://yaml.local:9000\n  timeout: 2s\ntheme:\n  name: nord\n"), 0o600)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.API.BaseURL != "http://yaml.local:9000" || cfg.API.Timeout.Duration != 2*time.Second {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Theme.Name != "nord" {
		t.Errorf("theme = %q", cfg.Theme.Name)
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Grid.RowHeight != 4 {
		t.Errorf("RowHeight = %d", cfg.Grid.RowHeight)
	}
}

func TestInvalidDurationFails(t *testing.T) {
	if _, err := LoadFromReader(strings.NewReader("[api]\ntimeout = \"soon\"\n")); err == nil {
		t.Error("expected error for bad duration")
	}
	if _, err := LoadFromReader(strings.NewReader("[api]\ntimeout = \"-1s\"\n")); err == nil {
		t.Error("expected error for negative duration")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("VITE_API_URL", "http://vite:5000")
	cfg, _ := LoadFromReader(strings.NewReader(""))
	if cfg.API.BaseURL != "http://vite:5000" {
		t.Errorf("VITE_API_URL not applied: %q", cfg.API.BaseURL)
	}

	t.Setenv("TILEBOARD_API_URL", "http://tile:5000")
	t.Setenv("TILEBOARD_THEME", "nord")
	t.Setenv("TILEBOARD_DEFAULT_CITY", "Oslo")
	t.Setenv("TILEBOARD_LOG_LEVEL", "debug")
	cfg, _ = LoadFromReader(strings.NewReader(""))
	if cfg.API.BaseURL != "http://tile:5000" {
		t.Errorf("TILEBOARD_API_URL should win over VITE_API_URL: %q", cfg.API.BaseURL)
	}
	if cfg.Theme.Name != "nord" || cfg.Widgets.DefaultCity != "Oslo" || cfg.Log.Level != "debug" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never replaces a variable that is present, even when empty.
	os.Unsetenv("TILEBOARD_API_URL")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TILEBOARD_API_URL=http://dotenv:5000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("TILEBOARD_API_URL"); got != "http://dotenv:5000" {
		t.Errorf("TILEBOARD_API_URL = %q", got)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Grid.RowHeight = 1
	cfg.Image.Protocol = "hologram"
	cfg.Presets = map[string][]PresetWidget{"bad": {{Type: "stocks"}}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"row_height", "hologram", "stocks"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestPresetNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Presets = map[string][]PresetWidget{"zeta": {{Type: "clock"}}}
	names := cfg.PresetNames()
	if strings.Join(names, ",") != "focus,starter,travel,zeta" {
		t.Errorf("PresetNames = %v", names)
	}
}

func TestSearchPathsHonourXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	paths := configSearchPaths()
	if len(paths) == 0 || paths[0] != filepath.Join(dir, "tileboard", "config.toml") {
		t.Errorf("paths = %v", paths)
	}
}
