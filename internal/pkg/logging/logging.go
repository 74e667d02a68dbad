package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/oliauusc/CSCI201-Group7/internal/pkg/config"
)

// Setup installs the process-wide slog logger built from cfg and returns it.
// The LOG_LEVEL environment variable, when set, wins over the configured level.
func Setup(cfg config.LogConfig, service string) *slog.Logger {
	level := cfg.Level
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}

	logger := New(os.Stdout, level, cfg.Format).With("service", service)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w.
// level may be "debug", "info", "warn", or "error" (default "info").
// format may be "json" or "text" (default "json").
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
