package backend

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/firekit/firekit/pkg/activator"
	"github.com/firekit/firekit/pkg/authcookie"
	"github.com/firekit/firekit/pkg/logger"
)

// Session is the per-context app handle shared by every service of one
// execution context. Its fields are never mutated after creation.
//
// AuthUser is decoded from the cookie without checking the signature and
// must not be used for authorization; use the outcome of Verified instead.
type Session struct {
	CreatedAt time.Time
	AuthUser  *authcookie.AuthUser
	verified  any
	verifyErr error
	ProjectID string
	IDToken   string
	verify    sync.Once
	ID        uuid.UUID
}

// Verified runs verify on first use and returns its outcome to every later
// caller, so all services of a context share one token verification.
func (s *Session) Verified(verify func() (any, error)) (any, error) {
	s.verify.Do(func() {
		s.verified, s.verifyErr = verify()
	})
	return s.verified, s.verifyErr
}

// Authenticated reports whether the context carried an ID token.
func (s *Session) Authenticated() bool {
	return s != nil && s.IDToken != ""
}

// UID returns the decoded, unverified user id, or "".
func (s *Session) UID() string {
	if s == nil || s.AuthUser == nil {
		return ""
	}
	return s.AuthUser.UID
}

type authState struct {
	auth      authcookie.Result
	sessionID uuid.UUID
}

type authKey struct{}

// ContextWithAuth stores the request's auth state and a fresh session id.
func ContextWithAuth(ctx context.Context, res authcookie.Result) context.Context {
	return context.WithValue(ctx, authKey{}, authState{auth: res, sessionID: uuid.New()})
}

// AuthFromContext returns the auth state placed by ContextWithAuth.
func AuthFromContext(ctx context.Context) (authcookie.Result, bool) {
	st, ok := ctx.Value(authKey{}).(authState)
	return st.auth, ok
}

// SessionIDFromContext returns the session id assigned by ContextWithAuth.
func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	st, ok := ctx.Value(authKey{}).(authState)
	return st.sessionID, ok
}

// SessionExtractor adds session_id to log records.
func SessionExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id, ok := SessionIDFromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return slog.String("session_id", id.String()), true
	}
}

// UserExtractor adds uid to log records of authenticated requests.
func UserExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		res, ok := AuthFromContext(ctx)
		if !ok || res.AuthUser == nil || res.AuthUser.UID == "" {
			return slog.Attr{}, false
		}
		return slog.String("uid", res.AuthUser.UID), true
	}
}

// NewSession builds the session for ctx.
func NewSession(ctx context.Context, projectID string) *Session {
	s := &Session{ProjectID: projectID, CreatedAt: time.Now()}
	st, ok := ctx.Value(authKey{}).(authState)
	if !ok {
		s.ID = uuid.New()
		return s
	}
	s.ID = st.sessionID
	s.IDToken = st.auth.IDToken
	s.AuthUser = st.auth.AuthUser
	return s
}

// NewAppFactory returns the activator app factory for m.
func NewAppFactory(m *Module) activator.AppFactory[*Module, *Session] {
	return func(ctx context.Context) (*Module, *Session, error) {
		if m == nil {
			return nil, nil, ErrNotConfigured
		}
		return m, NewSession(ctx, m.Config.ProjectID), nil
	}
}
