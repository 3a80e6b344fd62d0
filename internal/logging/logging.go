// Package logging configures the process-wide structured logger used by the
// batch runner, generator, and admin flows.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text slog.Logger writing to w. Verbose lowers the level to
// Debug so per-attempt pacing and transport detail show up.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
