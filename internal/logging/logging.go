// Package logging builds the slog logger shared by the commands.
package logging

import (
	"io"
	"log/slog"
)

// LevelFor maps the count of -v flags to a slog level.
func LevelFor(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Config describes the logger output.
type Config struct {
	Verbosity int
	// JSON switches the handler to one JSON object per record.
	JSON bool
}

// New returns a text logger writing to w at the level selected by verbosity.
func New(w io.Writer, verbosity int) *slog.Logger {
	return NewWithConfig(w, Config{Verbosity: verbosity})
}

// NewWithConfig returns a logger writing to w.
func NewWithConfig(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: LevelFor(cfg.Verbosity)}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts)).With("service", "cmpds")
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
