package logging

import (
	"io"
	"log/slog"
	"strings"

	"xmledit/src/config"
)

// NewLogger builds the diagnostic logger described by cfg. An invalid level falls back to info.
func NewLogger(cfg config.Log, w io.Writer) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
