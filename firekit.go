package firekit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/firekit/firekit/internal"
	"github.com/firekit/firekit/pkg/activator"
	"github.com/firekit/firekit/pkg/authcookie"
	"github.com/firekit/firekit/pkg/backend"
	"github.com/firekit/firekit/pkg/cookie"
	"github.com/firekit/firekit/pkg/health"
	"github.com/firekit/firekit/pkg/logger"
	"github.com/firekit/firekit/pkg/plugins"
)

// Type aliases - public API
type (
	// App orchestrates routing, the plugin chain and graceful shutdown.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Plugin is a named middleware in the ordered plugin chain.
	Plugin = internal.Plugin

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// HTTPError is an error carrying an HTTP status.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option

	// Activator is the fire activator over the backend module and session.
	Activator = activator.Activator[*backend.Module, *backend.Session]

	// Namespace is the per-request set of fire service accessors.
	Namespace = activator.Namespace[*backend.Module, *backend.Session]
)

// ErrFireNotActivated is returned by Fire and FireModule when the request
// carries no activation result.
var ErrFireNotActivated = errors.New("firekit: fire is not activated for this request")

// New creates a new application with the given options.
//
// Example:
//
//	app := firekit.New(
//	    firekit.WithFire(act),
//	    firekit.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    firekit.WithHandlers(handlers.NewNotes()),
//	)
//
//	err := app.Run(":8080", firekit.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// Fire returns the namespace activated for the request.
//
// Example:
//
//	ns, err := firekit.Fire(c)
//	if err != nil {
//	    return err
//	}
//	db, err := services.GetDatabase(c, ns)
func Fire(c Context) (*Namespace, error) {
	v, ok := c.Injected(activator.NamespaceKey)
	if !ok {
		return nil, ErrFireNotActivated
	}
	ns, ok := v.(*Namespace)
	if !ok {
		return nil, fmt.Errorf("%w: namespace is %T", ErrFireNotActivated, v)
	}
	return ns, nil
}

// FireModule returns the backend module registered for the request.
// It is only available when inject_module is enabled.
func FireModule(c Context) (*backend.Module, error) {
	v, ok := c.Injected(activator.ModuleKey)
	if !ok {
		return nil, ErrFireNotActivated
	}
	m, ok := v.(*backend.Module)
	if !ok {
		return nil, fmt.Errorf("%w: module is %T", ErrFireNotActivated, v)
	}
	return m, nil
}

// ActivateClient activates a namespace for code running outside a request,
// such as workers and CLI commands. It runs on the client side, so
// client-only services are available. token is the caller's raw ID token and
// may be empty; services verify it the same way as a request cookie.
// The returned context carries the auth state and should be used for every
// accessor call on the namespace.
//
// Example:
//
//	ctx, ns, err := firekit.ActivateClient(ctx, act, token)
//	if err != nil {
//	    return err
//	}
//	events, err := services.GetAnalytics(ctx, ns)
func ActivateClient(ctx context.Context, act *Activator, token string) (context.Context, *Namespace, error) {
	if act == nil {
		return ctx, nil, ErrFireNotActivated
	}
	res, err := authcookie.FromToken(token)
	if err != nil {
		return ctx, nil, err
	}
	ctx = backend.ContextWithAuth(ctx, res)
	ns, err := act.Activate(ctx, activator.SideClient, nil)
	if err != nil {
		return ctx, nil, err
	}
	return ctx, ns, nil
}

// App options

// WithFire enables per-request fire activation.
func WithFire(act *Activator) Option {
	if act == nil {
		return internal.WithFire(nil)
	}
	return internal.WithFire(act)
}

// WithPlugins appends named middleware to the plugin chain.
func WithPlugins(p ...Plugin) Option {
	return internal.WithPlugins(p...)
}

// WithExtendPlugins registers a callback that may reorder the plugin list
// before the chain is built.
//
// Example:
//
//	firekit.WithExtendPlugins(func(list []firekit.Plugin) error {
//	    return plugins.MoveAfterFirekit(list, "auth-guard")
//	})
func WithExtendPlugins(fn func([]Plugin) error) Option {
	return internal.WithExtendPlugins(fn)
}

// FirePlugin returns the placeholder positioning fire activation in WithPlugins.
func FirePlugin() Plugin {
	return internal.FirePlugin()
}

// NamedPlugin builds a Plugin from a source name and middleware.
func NamedPlugin(src string, mw Middleware) Plugin {
	return Plugin{Src: src, Middleware: mw}
}

// MoveAfterFirekit returns an extension moving the first plugin whose source
// contains name directly behind the fire plugin.
func MoveAfterFirekit(names ...string) func([]Plugin) error {
	return func(list []Plugin) error {
		for _, name := range names {
			if err := plugins.MoveAfterFirekit(list, name); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithStaticExport marks the app as a static export; every request is anonymous.
func WithStaticExport(static bool) Option {
	return internal.WithStaticExport(static)
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided, before plugins.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithErrorHandler sets a custom error handler for handler errors.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables health check endpoints.
//
// Example:
//
//	firekit.WithHealthChecks(
//	    firekit.WithReadinessChecks(module.Healthchecks()),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a logger with a component name and optional extractors.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithCookieOptions configures the cookie manager.
//
// Example:
//
//	firekit.WithCookieOptions(
//	    firekit.WithCookieSecure(true),
//	    firekit.WithAuthCookieName("session"),
//	)
func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// Health options

func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

func WithReadinessChecks(checks health.Checks) HealthOption {
	return internal.WithReadinessChecks(checks)
}

// Run options

// Logger sets the runtime logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// ShutdownHook registers cleanup functions run after the server stops.
func ShutdownHook(fn ...func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn...)
}

// WithContext sets the base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Cookie options

func WithCookieDomain(domain string) CookieOption {
	return cookie.WithDomain(domain)
}

func WithCookiePath(path string) CookieOption {
	return cookie.WithPath(path)
}

func WithCookieSecure(secure bool) CookieOption {
	return cookie.WithSecure(secure)
}

func WithCookieHTTPOnly(httpOnly bool) CookieOption {
	return cookie.WithHTTPOnly(httpOnly)
}

func WithCookieSameSite(ss http.SameSite) CookieOption {
	return cookie.WithSameSite(ss)
}

func WithAuthCookieName(name string) CookieOption {
	return cookie.WithAuthTokenName(name)
}

// Errors

var (
	NewHTTPError          = internal.NewHTTPError
	ErrBadRequest         = internal.ErrBadRequest
	ErrUnauthorized       = internal.ErrUnauthorized
	ErrForbidden          = internal.ErrForbidden
	ErrNotFound           = internal.ErrNotFound
	ErrInternal           = internal.ErrInternal
	ErrServiceUnavailable = internal.ErrServiceUnavailable
	IsHTTPError           = internal.IsHTTPError
	AsHTTPError           = internal.AsHTTPError
	WithErrorCode         = internal.WithErrorCode
	WithRequestID         = internal.WithRequestID
	WithError             = internal.WithError
)
