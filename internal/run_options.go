package internal

import (
	"context"
	"log/slog"
	"time"
)

// RunOption configures the server runtime.
type RunOption func(*runConfig)

// runConfig holds runtime configuration for the server.
type runConfig struct {
	logger          *slog.Logger
	baseCtx         context.Context
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

// buildRunConfig creates a runConfig from the provided options.
func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Logger sets the runtime logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// It covers both the HTTP server and the shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// ShutdownHook registers a cleanup function to run after the server stops.
// Hooks are called in the order they were registered.
//
// Example:
//
//	firekit.ShutdownHook(module.Close)
func ShutdownHook(fn ...func(context.Context) error) RunOption {
	return func(c *runConfig) {
		for _, f := range fn {
			if f != nil {
				c.shutdownHooks = append(c.shutdownHooks, f)
			}
		}
	}
}

// WithContext sets the base context for signal handling.
// Cancelling it shuts the server down. Defaults to context.Background().
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
