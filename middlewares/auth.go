package middlewares

import (
	"slices"

	"github.com/firekit/firekit/internal"
	"github.com/firekit/firekit/pkg/activator"
	"github.com/firekit/firekit/pkg/services"
)

type authConfig struct {
	message       string
	verifyToken   bool
	emailVerified bool
}

// AuthOption configures RequireAuth.
type AuthOption func(*authConfig)

// WithAuthMessage sets the message of the 401 response.
func WithAuthMessage(msg string) AuthOption {
	return func(cfg *authConfig) {
		if msg != "" {
			cfg.message = msg
		}
	}
}

// WithVerifiedToken requires a verified token even when the auth service is
// not reachable: a missing namespace or a disabled auth service is a 500
// instead of a fallback to the decoded cookie.
func WithVerifiedToken() AuthOption {
	return func(cfg *authConfig) {
		cfg.verifyToken = true
	}
}

// WithEmailVerified rejects users whose email is not verified with 403.
func WithEmailVerified() AuthOption {
	return func(cfg *authConfig) {
		cfg.emailVerified = true
	}
}

// RequireAuth returns middleware rejecting anonymous requests with 401.
// When the fire plugin has run and the auth service is enabled, the token
// must pass its verification; a decoded but unverified cookie is rejected.
// Without the auth service only the decoded cookie is checked, unless
// WithVerifiedToken is set.
func RequireAuth(opts ...AuthOption) internal.Middleware {
	cfg := &authConfig{message: "authentication required"}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			user := c.AuthUser()
			if user == nil || user.UID == "" {
				return unauthorized(c, cfg.message)
			}

			emailVerified := user.EmailVerified
			ns := namespaceOf(c)
			switch {
			case ns != nil && slices.Contains(ns.Keys(), services.IDAuth):
				auth, err := services.GetAuth(c, ns)
				if err != nil {
					return internal.ErrInternal("", internal.WithError(err))
				}
				verified, ok := auth.CurrentUser()
				if !ok {
					return unauthorized(c, cfg.message)
				}
				emailVerified = verified.EmailVerified
			case cfg.verifyToken:
				return internal.ErrInternal("", internal.WithError(errNoNamespace))
			}

			if cfg.emailVerified && !emailVerified {
				return internal.ErrForbidden("email not verified",
					internal.WithErrorCode("auth/email-not-verified"),
					internal.WithRequestID(GetRequestID(c)),
				)
			}
			return next(c)
		}
	}
}

func namespaceOf(c internal.Context) *services.Namespace {
	v, _ := c.Injected(activator.NamespaceKey)
	ns, _ := v.(*services.Namespace)
	return ns
}

func unauthorized(c internal.Context, msg string) error {
	return internal.ErrUnauthorized(msg,
		internal.WithErrorCode("auth/unauthenticated"),
		internal.WithRequestID(GetRequestID(c)),
	)
}
