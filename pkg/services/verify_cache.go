package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/firekit/firekit/pkg/authcookie"
)

// DefaultVerifyCacheTTL bounds how long a remote verification is reused.
const DefaultVerifyCacheTTL = 5 * time.Minute

// CachedVerifier memoizes successful verifications of Next in redis.
// Entries never outlive the token's own expiry. Rejections are not cached.
// Concurrent verifications of the same token share one call to Next.
type CachedVerifier struct {
	Next   Verifier
	Client KVClient
	Prefix string
	TTL    time.Duration

	group singleflight.Group
}

// NewCachedVerifier wraps next with a project-scoped redis cache.
func NewCachedVerifier(next Verifier, client KVClient, projectID string) *CachedVerifier {
	return &CachedVerifier{
		Next:   next,
		Client: client,
		Prefix: "fire:" + projectID + ":verified:",
		TTL:    DefaultVerifyCacheTTL,
	}
}

// Verify implements Verifier.
func (v *CachedVerifier) Verify(ctx context.Context, token string) (*User, error) {
	if v.Next == nil {
		return nil, ErrVerifierMissing
	}

	key := v.key(token)
	if u, ok := v.lookup(ctx, key); ok {
		return u, nil
	}

	res, err, _ := v.group.Do(key, func() (any, error) {
		u, err := v.Next.Verify(ctx, token)
		if err != nil {
			return nil, err
		}
		if ttl := v.ttlFor(token); ttl > 0 {
			if data, err := json.Marshal(u); err == nil {
				// A failed write only costs a repeated verification.
				_ = v.Client.Set(ctx, key, string(data), ttl).Err()
			}
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*User), nil
}

func (v *CachedVerifier) lookup(ctx context.Context, key string) (*User, bool) {
	data, err := v.Client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	u := &User{}
	if err := json.Unmarshal(data, u); err != nil || u.UID == "" {
		return nil, false
	}
	return u, true
}

// ttlFor returns the cache lifetime of token, zero when it must not be cached.
func (v *CachedVerifier) ttlFor(token string) time.Duration {
	ttl := v.TTL
	if ttl <= 0 {
		ttl = DefaultVerifyCacheTTL
	}
	claims, err := authcookie.Decode(token)
	if err != nil || claims.ExpiresAt == nil {
		return ttl
	}
	return min(ttl, time.Until(claims.ExpiresAt.Time))
}

func (v *CachedVerifier) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return v.Prefix + hex.EncodeToString(sum[:])
}
