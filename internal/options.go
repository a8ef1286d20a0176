package internal

import (
	"log/slog"

	"github.com/firekit/firekit/pkg/cookie"
	"github.com/firekit/firekit/pkg/health"
	"github.com/firekit/firekit/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithFire enables per-request fire activation with the given activator.
// Without it the fire plugin still parses the auth cookie.
//
// Example:
//
//	act, err := activator.New(cfg.Fire, reg, backend.NewAppFactory(module))
//	firekit.New(firekit.WithFire(act))
func WithFire(act FireActivator) Option {
	return func(a *App) {
		a.fire = act
	}
}

// WithPlugins appends named middleware to the plugin chain.
// Plugins run after global middleware, in list order.
func WithPlugins(p ...Plugin) Option {
	return func(a *App) {
		a.plugins = append(a.plugins, p...)
	}
}

// WithExtendPlugins registers a callback that may reorder the plugin list
// in place before the chain is built. The list always contains the fire
// plugin by the time callbacks run.
//
// Example:
//
//	firekit.WithExtendPlugins(func(list []firekit.Plugin) error {
//	    return plugins.MoveAfterFirekit(list, "auth-guard")
//	})
func WithExtendPlugins(fn func([]Plugin) error) Option {
	return func(a *App) {
		if fn == nil {
			return
		}
		if plugins := a.plugins; !hasFirePlugin(plugins) {
			a.plugins = append([]Plugin{FirePlugin()}, plugins...)
		}
		a.extendPlugins = append(a.extendPlugins, fn)
	}
}

// WithStaticExport marks the app as a static export build.
// The auth cookie is ignored and every request is anonymous.
func WithStaticExport(static bool) Option {
	return func(a *App) {
		a.staticExport = static
	}
}

// WithMiddleware adds global middleware, applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithErrorHandler sets a custom error handler for handler errors.
// The default renders HTTPError values as JSON.
//
// Example:
//
//	firekit.WithErrorHandler(func(c firekit.Context, err error) error {
//	    return c.String(http.StatusInternalServerError, "oops")
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealthChecks enables health check endpoints.
// Liveness (/health/live) always returns OK while the process runs.
// Readiness (/health/ready) runs all configured checks.
//
// Example:
//
//	firekit.WithHealthChecks(
//	    firekit.WithReadinessChecks(module.Healthchecks()),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a JSON logger with a component name and optional extractors.
//
// Example:
//
//	firekit.WithLogger("api", middlewares.RequestIDExtractor(), backend.SessionExtractor())
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(logger.Config{}, extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieOptions configures the cookie manager, including the auth cookie name.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookieManager = cookie.New(opts...)
	}
}
