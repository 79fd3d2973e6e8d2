// Package logging builds the zap logger used across pinvault.
// Logs never go to stdout, which carries the session dialog.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger holds the process logger
type Logger struct {
	Log *zap.Logger
}

// New returns a logger that discards everything until Init is called
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init replaces the logger with one writing at level to path.
// An empty path means stderr.
func (l *Logger) Init(level, path string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if path == "" {
		path = "stderr"
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	zl, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	l.Log = zl
	return nil
}
