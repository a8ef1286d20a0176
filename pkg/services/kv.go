package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/firekit/firekit/pkg/activator"
	"github.com/firekit/firekit/pkg/backend"
)

// KVClient is the subset of go-redis used by KV.
type KVClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// KV is a project-scoped key/value store.
type KV struct {
	client KVClient
	prefix string
}

// NewKV creates the kv service for a project.
func NewKV(client KVClient, projectID string) *KV {
	return &KV{client: client, prefix: "fire:" + projectID + ":kv:"}
}

func newKV(_ context.Context, sess *backend.Session, mod *backend.Module, _ activator.InjectFunc) (any, error) {
	if mod.Redis == nil {
		return nil, fmt.Errorf("%w: redis", backend.ErrNotConfigured)
	}
	return NewKV(mod.Redis, sess.ProjectID), nil
}

// Get returns the value of key.
func (kv *KV) Get(ctx context.Context, key string) (string, error) {
	v, err := kv.client.Get(ctx, kv.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return v, err
}

// Set stores value under key. A zero ttl keeps the key forever.
func (kv *KV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return kv.client.Set(ctx, kv.prefix+key, value, ttl).Err()
}

// Delete removes key.
func (kv *KV) Delete(ctx context.Context, key string) error {
	return kv.client.Del(ctx, kv.prefix+key).Err()
}
