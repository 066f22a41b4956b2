// Package logging builds the process-wide slog logger. Every run is tagged
// with a fresh run id so log lines from overlapping invocations can be told
// apart.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Options selects the handler format and level.
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // text or json
	Verbose bool   // forces debug level
}

// New builds a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	level := parseLevel(opts.Level)
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(handler).With("run_id", uuid.NewString())
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
