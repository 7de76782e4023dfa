package app

import (
	"log/slog"
	"os"
	"strings"

	"courier-dispatch/internal/logx"
)

// NewLogger builds the JSON logger. LOG_LEVEL picks debug, warn or error;
// anything else means info.
func NewLogger() logx.Logger {
	base := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}))
	return logx.NewSlogAdapter(base.With(slog.String("service", "courier-dispatch")))
}

func parseLevel(s string) slog.Level {
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
