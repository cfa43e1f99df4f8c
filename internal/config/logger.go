package config

import (
	"log/slog"
	"os"
	"strings"
)

type LoggerConfig struct {
	Level string `koanf:"level"`
	// Format is "json" or "text"; empty picks json outside development.
	Format string `koanf:"format"`
}

func (c LoggerConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
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

func (c LoggerConfig) NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}

	format := strings.ToLower(c.Format)
	if format == "" {
		format = "json"
		if env == "development" {
			format = "text"
		}
	}

	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
