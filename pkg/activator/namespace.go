package activator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// memo computes a value at most once and remembers the outcome, error included.
// Concurrent callers block until the first computation finishes.
type memo[T any] struct {
	val  T
	err  error
	once sync.Once
	done atomic.Bool
}

func (m *memo[T]) do(fn func() (T, error)) (T, error) {
	m.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				m.err = fmt.Errorf("%w: %w: %v", ErrInitialization, ErrInitializerPanic, r)
			}
			m.done.Store(true)
		}()
		m.val, m.err = fn()
	})
	return m.val, m.err
}

// peek returns the value if it was computed successfully.
func (m *memo[T]) peek() (T, bool) {
	if !m.done.Load() || m.err != nil {
		var zero T
		return zero, false
	}
	return m.val, true
}

type appHandle[M, S any] struct {
	module  M
	session S
}

type slot[M, S any] struct {
	svc  *service[M, S]
	memo memo[any]
}

// Namespace holds the session and service handles of one execution context.
// All state is owned by the namespace; nothing is shared between contexts.
type Namespace[M, S any] struct {
	a      *Activator[M, S]
	inject InjectFunc
	slots  map[string]*slot[M, S]
	app    memo[appHandle[M, S]]
	side   Side
}

func newNamespace[M, S any](a *Activator[M, S], side Side, inject InjectFunc) *Namespace[M, S] {
	slots := make(map[string]*slot[M, S], len(a.services))
	for i := range a.services {
		slots[a.services[i].ID] = &slot[M, S]{svc: &a.services[i]}
	}
	return &Namespace[M, S]{
		a:      a,
		side:   side,
		inject: inject,
		slots:  slots,
	}
}

// Side returns the side the namespace was activated for.
func (ns *Namespace[M, S]) Side() Side {
	return ns.side
}

// Keys returns the enabled service identifiers in configuration order.
func (ns *Namespace[M, S]) Keys() []string {
	return ns.a.cfg.IDs()
}

// AppReady initializes the module and session once and returns the session.
// A failure is remembered: every later call returns the same error.
func (ns *Namespace[M, S]) AppReady(ctx context.Context) (S, error) {
	app, err := ns.appReady(ctx)
	return app.session, err
}

// Module returns the module handle, initializing the app if needed.
func (ns *Namespace[M, S]) Module(ctx context.Context) (M, error) {
	app, err := ns.appReady(ctx)
	return app.module, err
}

func (ns *Namespace[M, S]) appReady(ctx context.Context) (appHandle[M, S], error) {
	return ns.app.do(func() (appHandle[M, S], error) {
		start := time.Now()
		mod, sess, err := ns.a.newApp(ctx)
		if err != nil {
			ns.a.logger.ErrorContext(ctx, "fire app initialization failed", slog.Any("error", err))
			return appHandle[M, S]{}, fmt.Errorf("%w: app: %w", ErrInitialization, err)
		}
		ns.a.logger.DebugContext(ctx, "fire app initialized",
			slog.String("side", ns.side.String()),
			slog.Duration("took", time.Since(start)),
		)

		// Eager activation injects the module only after every service succeeded.
		if ns.a.cfg.Lazy && ns.a.cfg.InjectModule {
			ns.inject(ModuleKey, mod)
		}
		return appHandle[M, S]{module: mod, session: sess}, nil
	})
}

// ServiceReady returns the handle of service id, initializing the session
// and the service on first use. Later calls return the same handle, or the
// same error if initialization failed.
func (ns *Namespace[M, S]) ServiceReady(ctx context.Context, id string) (any, error) {
	sl, err := ns.slot(id)
	if err != nil {
		return nil, err
	}

	return sl.memo.do(func() (any, error) {
		app, err := ns.appReady(ctx)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		h, err := sl.svc.factory(ctx, app.session, app.module, ns.inject)
		if err != nil {
			ns.a.logger.ErrorContext(ctx, "fire service initialization failed",
				slog.String("service", id),
				slog.Any("error", err),
			)
			return nil, fmt.Errorf("%w: service %q: %w", ErrInitialization, id, err)
		}
		ns.a.logger.DebugContext(ctx, "fire service initialized",
			slog.String("service", id),
			slog.Duration("took", time.Since(start)),
		)
		return h, nil
	})
}

// Service returns the handle of service id if it has already been initialized.
// It never triggers initialization.
func (ns *Namespace[M, S]) Service(id string) (any, bool) {
	sl, ok := ns.slots[id]
	if !ok {
		return nil, false
	}
	return sl.memo.peek()
}

// Ready initializes the session, then every service relevant to the
// namespace's side concurrently. It returns the session once all services
// are ready, or the first failure.
func (ns *Namespace[M, S]) Ready(ctx context.Context) (S, error) {
	sess, err := ns.AppReady(ctx)
	if err != nil {
		return sess, err
	}

	// Plain group: one failing service must not cancel its siblings,
	// their outcome is memoized.
	var g errgroup.Group
	for _, svc := range ns.a.services {
		if !svc.appliesTo(ns.side) {
			continue
		}
		id := svc.ID
		g.Go(func() error {
			_, err := ns.ServiceReady(ctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		var zero S
		return zero, err
	}
	return sess, nil
}

func (ns *Namespace[M, S]) slot(id string) (*slot[M, S], error) {
	sl, ok := ns.slots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServiceNotEnabled, id)
	}
	if !sl.svc.appliesTo(ns.side) {
		return nil, fmt.Errorf("%w: %q on %s", ErrWrongSide, id, ns.side)
	}
	return sl, nil
}

// Get resolves service id and asserts its handle type.
//
// Example:
//
//	auth, err := activator.Get[*services.Auth](ctx, ns, "auth")
func Get[T, M, S any](ctx context.Context, ns *Namespace[M, S], id string) (T, error) {
	var zero T
	h, err := ns.ServiceReady(ctx, id)
	if err != nil {
		return zero, err
	}
	v, ok := h.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T", ErrServiceType, id, h)
	}
	return v, nil
}
