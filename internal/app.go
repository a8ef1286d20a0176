package internal

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/firekit/firekit/pkg/cookie"
	"github.com/firekit/firekit/pkg/health"
	"github.com/firekit/firekit/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App orchestrates routing, the plugin chain and graceful shutdown.
// App is immutable after creation; all configuration is done via New().
type App struct {
	router                  chi.Router
	fire                    FireActivator
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	logger                  *slog.Logger
	cookieManager           *cookie.Manager
	middlewares             []Middleware
	plugins                 []Plugin
	extendPlugins           []func([]Plugin) error
	handlers                []Handler
	staticExport            bool
}

// New creates a new application with the given options.
// It panics if a WithExtendPlugins callback fails, as a broken plugin
// order is a programming error.
//
// Example:
//
//	app := firekit.New(
//	    firekit.WithFire(act),
//	    firekit.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    firekit.WithHandlers(handlers.NewNotes()),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:        chi.NewRouter(),
		logger:        logger.NewNope(),
		cookieManager: cookie.New(),
		errorHandler:  defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(a)
	}

	for _, fn := range a.extendPlugins {
		if err := fn(a.plugins); err != nil {
			panic(fmt.Sprintf("extend plugins: %v", err))
		}
	}

	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Plugins returns the plugin order as configured, after extensions ran.
func (a *App) Plugins() []Plugin {
	out := make([]Plugin, len(a.plugins))
	copy(out, a.plugins)
	return out
}

// Run starts the HTTP server and blocks until shutdown.
//
// Example:
//
//	err := app.Run(":8080",
//	    firekit.Logger(log),
//	    firekit.ShutdownHook(module.Close),
//	)
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// setupRoutes configures the router with middleware, plugins and handlers.
func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	// Probes stay outside the plugin chain so activation failures
	// never hide liveness.
	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath,
			health.ReadinessHandler(a.healthConfig.checks, health.WithLogger(a.logger)))
	}

	a.router.Group(func(cr chi.Router) {
		for _, mw := range a.middlewares {
			cr.Use(a.adaptMiddleware(mw))
		}
		for _, mw := range a.pluginChain() {
			cr.Use(a.adaptMiddleware(mw))
		}

		r := &routerAdapter{router: cr, app: a}
		for _, h := range a.handlers {
			h.Routes(r)
		}
	})
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.serve(w, r, h)
	}
}

// serve runs h against a fresh Context and routes its error.
func (a *App) serve(w http.ResponseWriter, r *http.Request, h HandlerFunc) {
	c := newContext(w, r, a)
	if err := h(c); err != nil {
		a.handleError(c, err)
	}
}

// handleError hands err to the error handler unless a response was written.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		return
	}
	if herr := a.errorHandler(c, err); herr != nil && !c.Written() {
		c.LogError("error handler failed", slog.Any("error", herr))
		http.Error(c.Response(), "Internal Server Error", http.StatusInternalServerError)
	}
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		c.checks[name] = fn
	}
}

// WithReadinessChecks adds every check in checks, e.g. backend.Module.Healthchecks().
func WithReadinessChecks(checks health.Checks) HealthOption {
	return func(c *healthConfig) {
		for name, fn := range checks {
			c.checks[name] = fn
		}
	}
}
