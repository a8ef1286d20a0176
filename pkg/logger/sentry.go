package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
	// MinLevel is warn or error; records at or above it are stored in Sentry.
	MinLevel string `yaml:"min_level"`
}

// NewWithSentry creates a logger writing to stdout and Sentry.
// Errors become Sentry issues. With an empty DSN, or when Sentry fails to
// initialize, only stdout is used.
func NewWithSentry(cfg Config, sc SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stdout := stdoutHandler(os.Stdout, cfg)

	if sc.DSN == "" {
		return slog.New(NewHandler(stdout, extractors...))
	}

	env := sc.Environment
	if env == "" {
		env = "production"
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         sc.DSN,
		Environment: env,
		EnableLogs:  true,
	}); err != nil {
		slog.New(stdout).Error("failed to initialize sentry", slog.String("error", err.Error()))
		return slog.New(NewHandler(stdout, extractors...))
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if ParseLevel(sc.MinLevel) == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return slog.New(NewHandler(fanout{stdout, sentryHandler}, extractors...))
}
