// Package logging builds the structured logger shared by all transports and
// the Actor.
package logging

import (
	"log/slog"
	"os"
)

// New builds a slog.Logger from a level name ("debug", "info", "warn",
// "error") and a format ("json" or "text"). Unknown levels default to info;
// unknown formats default to text.
func New(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
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

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
