package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/firekit/firekit/pkg/activator"
	"github.com/firekit/firekit/pkg/backend"
)

// StreamClient is the subset of go-redis used by Analytics.
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Analytics appends events to a capped redis stream.
type Analytics struct {
	client  StreamClient
	session *backend.Session
	stream  string
	uid     string
	maxLen  int64
}

const analyticsMaxLen = 100_000

var eventName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{0,39}$`)

// NewAnalytics creates the analytics service for a session. Events are
// attributed to uid, which may be empty.
func NewAnalytics(client StreamClient, sess *backend.Session, uid string) *Analytics {
	return &Analytics{
		client:  client,
		session: sess,
		uid:     uid,
		stream:  "fire:" + sess.ProjectID + ":events",
		maxLen:  analyticsMaxLen,
	}
}

func newAnalytics(ctx context.Context, sess *backend.Session, mod *backend.Module, _ activator.InjectFunc) (any, error) {
	if mod.Redis == nil {
		return nil, fmt.Errorf("%w: redis", backend.ErrNotConfigured)
	}
	return NewAnalytics(mod.Redis, sess, verifiedUID(ctx, sess, mod)), nil
}

// Stream returns the stream key events are written to.
func (a *Analytics) Stream() string {
	return a.stream
}

// LogEvent records an event and returns its stream id.
func (a *Analytics) LogEvent(ctx context.Context, name string, params map[string]any) (string, error) {
	if !eventName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEventName, name)
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return "", errors.Join(ErrEncode, err)
	}

	return a.client.XAdd(ctx, &redis.XAddArgs{
		Stream: a.stream,
		MaxLen: a.maxLen,
		Approx: true,
		Values: map[string]any{
			"name":       name,
			"uid":        a.uid,
			"session_id": a.session.ID.String(),
			"params":     string(payload),
			"ts":         time.Now().UTC().Format(time.RFC3339Nano),
		},
	}).Result()
}
