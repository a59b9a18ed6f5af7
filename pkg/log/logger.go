package log

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New constructs a JSON slog.Logger preconfigured at info level
func New(service, env, version string) *slog.Logger {
	return NewWithLevel(service, env, version, slog.LevelInfo)
}

// NewWithLevel constructs a JSON slog.Logger at the provided level
func NewWithLevel(
	service, env, version string, lvl slog.Level,
) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	})

	return slog.New(handler).With(
		slog.String("service", service),
		slog.String("env", env),
		slog.String("version", version))
}

// NewDev constructs a colorized console slog.Logger for local development
func NewDev(service string, lvl slog.Level) *slog.Logger {
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	})

	return slog.New(handler).With(
		slog.String("service", service))
}
