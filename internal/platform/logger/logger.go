package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Defaults applied when LOG_LEVEL or LOG_FORMAT carry unknown values.
const (
	DefaultLevel  = "info"
	DefaultFormat = "json"
)

// New returns a structured logger writing to stdout with the given level
// ("debug", "info", "warn", "error") and format ("json" or "text").
// Unknown values fall back to the defaults.
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter is New with an explicit destination, useful for capturing
// log output in tests.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if strings.ToLower(format) == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(h)
}
