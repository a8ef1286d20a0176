// Package redis opens the go-redis client shared by the kv and analytics
// services.
//
//	client, err := redis.Open(ctx, redis.Config{URL: "redis://localhost:6379/0"})
//
// Both redis:// and rediss:// (TLS) URLs are accepted. Zero config fields
// take the defaults from [DefaultConfig]. [Healthcheck] and [Shutdown] plug
// the client into the host.
package redis
