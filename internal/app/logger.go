package app

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger builds the application's logger without touching slog's default.
// Levels follow slog's text form, so "warn" and "DEBUG-4" both parse; an
// unknown level falls back to info. Debug output carries the call site.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: level <= slog.LevelDebug}
	if strings.EqualFold(formatStr, "json") {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
