package app

import (
	"log/slog"
	"os"
	"strings"

	"courier-dispatch/internal/logx"
)

// NewLogger builds the JSON logger. LOG_LEVEL=debug enables debug entries.
func NewLogger() logx.Logger {
	level := slog.LevelInfo
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}
	base := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	return logx.NewSlogAdapter(base)
}
