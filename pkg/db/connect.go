package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// poolConfig validates cfg and builds the pgxpool configuration.
func poolConfig(cfg Config) (*pgxpool.Config, error) {
	if cfg.ConnectionString == "" {
		return nil, ErrEmptyConnectionString
	}
	pc, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	pc.MaxConns = cfg.MaxOpenConns
	pc.MinConns = min(cfg.MinConns, cfg.MaxOpenConns)
	pc.HealthCheckPeriod = cfg.HealthCheckPeriod
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	return pc, nil
}

// Open connects to PostgreSQL, retrying with linear backoff until a ping
// succeeds or the attempts run out.
func Open(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	cfg = cfg.withDefaults()
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i := range max(cfg.RetryAttempts, 1) {
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrFailedToOpenDBConnection, lastErr)
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthcheck returns a readiness check pinging the pool.
func Healthcheck(p Pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if p == nil {
			return ErrHealthcheckFailed
		}
		if err := p.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook closing the pool.
func Shutdown(pool *pgxpool.Pool) func(context.Context) error {
	return func(context.Context) error {
		pool.Close()
		return nil
	}
}
