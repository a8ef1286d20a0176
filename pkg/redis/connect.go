package redis

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the redis connection settings.
type Config struct {
	URL           string        `yaml:"url"`
	PoolSize      int           `yaml:"pool_size"`
	MinIdleConns  int           `yaml:"min_idle_conns"`
	MaxIdleTime   time.Duration `yaml:"max_idle_time"`
	MaxActiveTime time.Duration `yaml:"max_active_time"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`
}

// DefaultConfig returns the defaults used for zero fields.
func DefaultConfig() Config {
	return Config{
		PoolSize:      10,
		MinIdleConns:  2,
		MaxIdleTime:   10 * time.Minute,
		MaxActiveTime: 30 * time.Minute,
		RetryAttempts: 3,
		RetryInterval: 5 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		DialTimeout:   5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	set := func(v *time.Duration, def time.Duration) {
		if *v == 0 {
			*v = def
		}
	}
	if c.PoolSize == 0 {
		c.PoolSize = d.PoolSize
	}
	if c.MinIdleConns == 0 {
		c.MinIdleConns = d.MinIdleConns
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = d.RetryAttempts
	}
	set(&c.MaxIdleTime, d.MaxIdleTime)
	set(&c.MaxActiveTime, d.MaxActiveTime)
	set(&c.RetryInterval, d.RetryInterval)
	set(&c.ReadTimeout, d.ReadTimeout)
	set(&c.WriteTimeout, d.WriteTimeout)
	set(&c.DialTimeout, d.DialTimeout)
	return c
}

// Options validates cfg and converts it to go-redis options.
func (c Config) Options() (*redis.Options, error) {
	if c.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(c.URL, "redis://") && !strings.HasPrefix(c.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	c = c.withDefaults()
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	opts.PoolSize = c.PoolSize
	opts.MinIdleConns = c.MinIdleConns
	opts.ConnMaxIdleTime = c.MaxIdleTime
	opts.ConnMaxLifetime = c.MaxActiveTime
	opts.ReadTimeout = c.ReadTimeout
	opts.WriteTimeout = c.WriteTimeout
	opts.DialTimeout = c.DialTimeout
	return opts, nil
}

// Open creates a client and pings it, retrying with linear backoff.
func Open(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	for i := range max(cfg.RetryAttempts, 1) {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		if err := wait(ctx, time.Duration(i+1)*cfg.RetryInterval); err != nil {
			return nil, errors.Join(ErrConnectionFailed, err)
		}
	}
	return nil, ErrConnectionFailed
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Healthcheck returns a readiness check pinging the client.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook closing the client.
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
