// Package logger builds the slog loggers used across firekit.
//
// Loggers write JSON (or text) to stdout and decorate every record with
// attributes pulled from the context by ContextExtractors, so request ids,
// fire session ids and authenticated user ids show up without being passed
// around explicitly:
//
//	log := logger.New(logger.Config{Level: "debug"},
//		middlewares.RequestIDExtractor(),
//		backend.SessionExtractor(),
//	)
//
// NewWithSentry additionally forwards warnings and errors to Sentry. An empty
// DSN falls back to stdout only, so the same wiring works locally.
package logger
