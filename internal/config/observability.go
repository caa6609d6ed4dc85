package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/project-kessel/attrfilter/internal/filter"
	"github.com/project-kessel/attrfilter/internal/probe"
)

// NewObserver creates a run observer from configuration using the provided
// logger.
func NewObserver(cfg *Config, logger *slog.Logger) (filter.Observer, error) {
	if cfg == nil {
		return filter.NoOpObserver{}, nil
	}

	switch cfg.Observer {
	case "logging", "":
		return probe.NewLoggingObserver(logger), nil
	case "noop":
		return filter.NoOpObserver{}, nil
	default:
		return nil, fmt.Errorf("unknown observer type: %s (supported: logging, noop)", cfg.Observer)
	}
}

// NewLogger creates a structured logger from configuration.
// Returns slog.Default() if cfg is nil.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg == nil {
		return slog.Default()
	}
	return slog.New(createHandler(cfg.LogFormat, parseLogLevel(cfg.LogLevel)))
}

// createHandler creates a slog handler based on format and level
func createHandler(format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch strings.ToLower(format) {
	case "json":
		return slog.NewJSONHandler(os.Stderr, opts)
	case "text", "":
		return slog.NewTextHandler(os.Stderr, opts)
	default:
		// Default to text
		return slog.NewTextHandler(os.Stderr, opts)
	}
}

// parseLogLevel parses a log level string
func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// Default to info
		return slog.LevelInfo
	}
}
