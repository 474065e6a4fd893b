package logger

import (
	"io"
	"log/slog"

	"smpadmin/internal/platform/config"
)

// New returns a structured logger writing to w in the configured format.
// An unparseable level falls back to info.
func New(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("service", "smpadmin")
}
