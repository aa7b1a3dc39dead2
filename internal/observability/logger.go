package observability

import (
	"log/slog"
	"os"
	"strings"
)

// LoggerSettings is the subset of configuration the logger needs.
type LoggerSettings interface {
	LoggerLevel() string
	LoggerFormat() string
}

// NewLogger builds a slog.Logger writing to stdout in the configured format
// ("json" or "text") at the configured level. Unknown levels fall back to info.
func NewLogger(cfg LoggerSettings) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LoggerLevel()) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.LoggerFormat()) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
