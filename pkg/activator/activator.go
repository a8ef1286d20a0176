package activator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firekit/firekit/pkg/logger"
)

// Option configures an Activator.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for initialization events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// service is a configured service bound to its factory.
type service[M, S any] struct {
	factory ServiceFactory[M, S]
	ServiceConfig
}

// Activator produces per-context namespaces from a validated configuration.
// It holds no per-context state and is safe for concurrent use.
type Activator[M, S any] struct {
	newApp   AppFactory[M, S]
	logger   *slog.Logger
	services []service[M, S]
	cfg      Config
}

// New validates cfg against the registry and returns an Activator.
// Every configured service must be registered.
func New[M, S any](cfg Config, reg *Registry[M, S], newApp AppFactory[M, S], opts ...Option) (*Activator[M, S], error) {
	if reg == nil {
		return nil, errors.Join(ErrConfiguration, errors.New("registry is required"))
	}
	if newApp == nil {
		return nil, errors.Join(ErrConfiguration, errors.New("app factory is required"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{logger: logger.NewNope()}
	for _, opt := range opts {
		opt(o)
	}

	services := make([]service[M, S], 0, len(cfg.Services))
	for _, sc := range cfg.Services {
		f, ok := reg.Lookup(sc.ID)
		if !ok {
			return nil, errors.Join(ErrConfiguration, fmt.Errorf("%w: %q", ErrUnknownService, sc.ID))
		}
		services = append(services, service[M, S]{ServiceConfig: sc, factory: f})
	}

	return &Activator[M, S]{
		cfg:      cfg,
		newApp:   newApp,
		services: services,
		logger:   o.logger,
	}, nil
}

// Config returns the configuration the activator was built with.
func (a *Activator[M, S]) Config() Config {
	return a.cfg
}

// Activate creates the namespace for one context.
//
// In lazy mode the namespace is injected and returned immediately.
// In eager mode the session and every service relevant to side are
// initialized first; any failure is returned and nothing is injected.
func (a *Activator[M, S]) Activate(ctx context.Context, side Side, inject InjectFunc) (*Namespace[M, S], error) {
	if inject == nil {
		inject = func(string, any) {}
	}

	ns := newNamespace(a, side, inject)
	if a.cfg.Lazy {
		inject(NamespaceKey, ns)
		return ns, nil
	}

	if _, err := ns.Ready(ctx); err != nil {
		a.logger.ErrorContext(ctx, "fire activation failed",
			slog.String("side", side.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	if a.cfg.InjectModule {
		app, _ := ns.app.peek()
		inject(ModuleKey, app.module)
	}
	inject(NamespaceKey, ns)
	return ns, nil
}

// Hook adapts Activate to a host lifecycle hook for a fixed side.
func (a *Activator[M, S]) Hook(side Side) func(ctx context.Context, inject InjectFunc) error {
	return func(ctx context.Context, inject InjectFunc) error {
		_, err := a.Activate(ctx, side, inject)
		return err
	}
}
