// Package logging builds the console logger shared by all commands.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// Options configures the console logger.
type Options struct {
	Verbose bool // Log at debug level.
	NoColor bool // Disable ANSI colors.
}

// New returns a slog.Logger writing human-readable, optionally colored lines to w.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    opts.NoColor,
	}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
