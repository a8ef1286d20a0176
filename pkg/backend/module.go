package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"

	"github.com/firekit/firekit/pkg/backend/migrations"
	"github.com/firekit/firekit/pkg/db"
	"github.com/firekit/firekit/pkg/health"
	"github.com/firekit/firekit/pkg/logger"
	"github.com/firekit/firekit/pkg/redis"
	"github.com/firekit/firekit/pkg/storage"
)

// Module holds the SDK handles shared by every execution context.
// Nil handles mean the dependency is not configured.
type Module struct {
	Config   AppConfig
	DB       *pgxpool.Pool
	Redis    goredis.UniversalClient
	Storage  storage.Storage
	Supabase *supabase.Client
	Logger   *slog.Logger

	checks   health.Checks
	shutdown []func(context.Context) error
}

// Option configures Open.
type Option func(*Module)

// WithLogger sets the module logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.Logger = l
		}
	}
}

// NewModule builds a module from already opened handles. Nil handles are
// allowed. Open is the usual entry point; NewModule serves embedding and tests.
func NewModule(app AppConfig, opts ...Option) *Module {
	m := &Module{
		Config: app,
		Logger: logger.NewNope(),
		checks: health.Checks{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithDB attaches a Postgres pool.
func WithDB(pool *pgxpool.Pool) Option {
	return func(m *Module) {
		m.DB = pool
	}
}

// WithRedis attaches a redis client.
func WithRedis(client goredis.UniversalClient) Option {
	return func(m *Module) {
		m.Redis = client
	}
}

// WithStorage attaches file storage.
func WithStorage(s storage.Storage) Option {
	return func(m *Module) {
		m.Storage = s
	}
}

// Open connects every configured dependency and migrates the database.
// On failure, whatever was already opened is closed.
func Open(ctx context.Context, cfg Config, opts ...Option) (_ *Module, err error) {
	if err := cfg.App.Validate(); err != nil {
		return nil, err
	}

	m := NewModule(cfg.App, opts...)
	defer func() {
		if err != nil {
			_ = m.Close(context.WithoutCancel(ctx))
		}
	}()

	if cfg.Database.ConnectionString != "" {
		pool, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return nil, errors.Join(ErrOpen, err)
		}
		m.DB = pool
		m.addCheck("postgres", db.Healthcheck(pool))
		m.onShutdown(db.Shutdown(pool))

		if err := db.Migrate(ctx, pool, migrations.FS, cfg.Database.MigrationsTable, m.Logger); err != nil {
			return nil, errors.Join(ErrOpen, err)
		}
	}

	if cfg.Redis.URL != "" {
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return nil, errors.Join(ErrOpen, err)
		}
		m.Redis = client
		m.addCheck("redis", redis.Healthcheck(client))
		m.onShutdown(redis.Shutdown(client))
	}

	if cfg.Storage.Enabled() {
		store, err := storage.Open(cfg.Storage)
		if err != nil {
			return nil, errors.Join(ErrOpen, err)
		}
		m.Storage = store
		if s3, ok := store.(*storage.S3Storage); ok {
			m.addCheck("storage", s3.Healthcheck())
		}
	}

	if cfg.App.SupabaseEnabled() {
		client, err := supabase.NewClient(cfg.App.SupabaseURL, cfg.App.SupabaseKey, nil)
		if err != nil {
			return nil, errors.Join(ErrOpen, fmt.Errorf("supabase: %w", err))
		}
		m.Supabase = client
	}

	m.Logger.InfoContext(ctx, "backend module opened",
		slog.String("project_id", cfg.App.ProjectID),
		slog.Bool("database", m.DB != nil),
		slog.Bool("redis", m.Redis != nil),
		slog.Bool("storage", m.Storage != nil),
		slog.Bool("supabase", m.Supabase != nil),
	)
	return m, nil
}

func (m *Module) addCheck(name string, fn health.CheckFunc) {
	m.checks[name] = fn
}

func (m *Module) onShutdown(fn func(context.Context) error) {
	m.shutdown = append(m.shutdown, fn)
}

// Healthchecks returns the readiness checks of the opened dependencies.
func (m *Module) Healthchecks() health.Checks {
	out := make(health.Checks, len(m.checks))
	for k, v := range m.checks {
		out[k] = v
	}
	return out
}

// ShutdownHooks returns closers in reverse opening order.
func (m *Module) ShutdownHooks() []func(context.Context) error {
	hooks := make([]func(context.Context) error, 0, len(m.shutdown))
	for i := len(m.shutdown) - 1; i >= 0; i-- {
		hooks = append(hooks, m.shutdown[i])
	}
	return hooks
}

// Close runs every shutdown hook and joins their errors.
func (m *Module) Close(ctx context.Context) error {
	var errs []error
	for _, fn := range m.ShutdownHooks() {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	m.shutdown = nil
	return errors.Join(errs...)
}
