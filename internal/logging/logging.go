// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logging options.
type Config struct {
	Level  slog.Level
	JSON   bool
	Output io.Writer // nil = os.Stderr
}

// FromSettings builds a Config from the hearth.yaml logging section.
// LOG_LEVEL, when set, takes precedence over level.
func FromSettings(level string, json bool, out io.Writer) Config {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	return Config{
		Level:  ParseLevel(level),
		JSON:   json,
		Output: out,
	}
}

// ParseLevel converts "debug", "info", "warn" or "error" to a slog.Level.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs and returns the default logger for cfg.
func Setup(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var h slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.JSON {
		h = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
