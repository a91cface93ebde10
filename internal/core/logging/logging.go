// Package logging provides the structured logger factory for automata.
//
// It configures [log/slog] with a JSON handler (the default, for servers) or
// a text handler (for the CLI), at a configurable minimum level.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// NewWithWriter creates a [slog.Logger] writing to w at the given level.
// format is "json" (default) or "text".
func NewWithWriter(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel converts a level string to a [slog.Level].
// Returns [slog.LevelInfo] for unrecognised values.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
