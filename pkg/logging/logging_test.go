package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"gitlab.com/tinyland/lab/tileboard/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{" WARN ", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"chatty", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tileboard.log")
	for _, format := range []string{"console", "json"} {
		t.Run(format, func(t *testing.T) {
			log, err := New(config.LogConfig{Level: "info", Format: format, File: path}, Options{})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			log.Info("layout saved")
			_ = log.Sync()

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read log: %v", err)
			}
			if !strings.Contains(string(data), "layout saved") {
				t.Errorf("log file missing entry: %q", data)
			}
		})
	}
}

func TestLevelOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.log")
	log, err := New(config.LogConfig{Level: "error", File: path}, Options{Level: "debug"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("override to debug not applied")
	}
}

func TestNoOutputsIsNop(t *testing.T) {
	log, err := New(config.LogConfig{}, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger without outputs should be a no-op")
	}
}

func TestBadLevelFails(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}, Options{}); err == nil {
		t.Error("expected error")
	}
}
