// Package logger configures the process-wide structured logger.
//
// JSON output for production (log aggregation), text for local use. Level
// and format come from the CLI flags / RULEKIT_ environment and apply to
// slog.Default, so packages log through plain slog without carrying a
// logger dependency.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default slog logger.
// format is "json" or "text"; level is debug/info/warn/error.
func Setup(level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		return fmt.Errorf("unknown log format: %s (expected json or text)", format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// ParseLevel converts a string level name to slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(level) {
	case "", "INFO":
		return slog.LevelInfo, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}
