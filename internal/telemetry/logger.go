package telemetry

import (
	"io"
	"log/slog"
)

// NewLogger returns a JSON logger writing records at or above level to w.
func NewLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
