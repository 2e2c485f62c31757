package slogx

import (
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Service string
	Version string
	Env     string   // e.g. "dev", "prod"
	Level   string   // e.g. "debug", "info", "warn", "error"
	Format  string   // e.g. "json", "text"
	Redact  []string // attr keys to obfuscate; nil means DefaultRedactFields
}

// New returns a configured slog.Logger instance. Every handler is wrapped in
// a redacting handler so credential material can never reach log output.
func New(cfg Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev", // Add source info in dev mode
		Level:     parseLevel(cfg.Level),
	}

	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	fields := cfg.Redact
	if fields == nil {
		fields = DefaultRedactFields
	}

	logger := slog.New(NewRedactingHandler(handler, fields...)).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	slog.SetDefault(logger)
	return logger
}

// parseLevel maps a string to slog.Level.
func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
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
