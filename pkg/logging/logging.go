// Package logging builds the zap logger shared by every component. The TUI
// owns the terminal, so logs go to a file; CLI commands can add stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gitlab.com/tinyland/lab/tileboard/pkg/config"
)

// Options adjusts New beyond what the config file says.
type Options struct {
	// Stderr also writes to standard error.
	Stderr bool
	// Level, when set, overrides the configured level.
	Level string
}

// New builds a logger from cfg. A json format uses zap's production
// encoder; anything else uses the development console encoder.
func New(cfg config.LogConfig, opts Options) (*zap.Logger, error) {
	levelText := cfg.Level
	if opts.Level != "" {
		levelText = opts.Level
	}
	level, err := ParseLevel(levelText)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if strings.EqualFold(cfg.Format, "json") {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.Development = false
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.FunctionKey = "func"
	zc.DisableStacktrace = true

	zc.OutputPaths = nil
	zc.ErrorOutputPaths = nil
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("logging: create log dir: %w", err)
		}
		zc.OutputPaths = append(zc.OutputPaths, cfg.File)
		zc.ErrorOutputPaths = append(zc.ErrorOutputPaths, cfg.File)
	}
	if opts.Stderr {
		zc.OutputPaths = append(zc.OutputPaths, "stderr")
		zc.ErrorOutputPaths = append(zc.ErrorOutputPaths, "stderr")
	}
	if len(zc.OutputPaths) == 0 {
		return zap.NewNop(), nil
	}

	logger, err := zc.Build(zap.AddCaller())
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return logger, nil
}

// ParseLevel maps a level name to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return 0, fmt.Errorf("logging: unknown level %q", s)
	}
	return l, nil
}
