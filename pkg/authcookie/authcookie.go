package authcookie

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/firekit/firekit/pkg/cookie"
)

// ErrDecode is returned when the token in the auth cookie is malformed.
var ErrDecode = errors.New("authcookie: malformed token")

// AuthUser is the identity projected from the token claims.
// It is not a full user record.
type AuthUser struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Result holds the parsed auth state of a request.
// Both fields are empty when the request carries no token.
type Result struct {
	AuthUser *AuthUser
	IDToken  string
}

// Empty reports whether no token was found.
func (r Result) Empty() bool {
	return r.IDToken == ""
}

// Claims is the subset of ID token claims the projection reads.
type Claims struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// UID returns user_id, falling back to the subject claim.
func (c *Claims) UID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

type options struct {
	cookieName string
	static     bool
}

// Option configures Parse.
type Option func(*options)

// WithCookieName overrides the auth cookie name.
func WithCookieName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.cookieName = name
		}
	}
}

// WithStatic marks a static export render. No per-request data exists then,
// so Parse returns an empty result.
func WithStatic(static bool) Option {
	return func(o *options) {
		o.static = static
	}
}

// Parse reads the auth cookie from the request's Cookie header.
func Parse(r *http.Request, opts ...Option) (Result, error) {
	if r == nil {
		return Result{}, nil
	}
	return ParseHeader(r.Header.Get("Cookie"), opts...)
}

// ParseHeader is like Parse for a raw Cookie header value.
func ParseHeader(header string, opts ...Option) (Result, error) {
	o := &options{cookieName: cookie.AuthTokenName}
	for _, opt := range opts {
		opt(o)
	}

	if o.static || header == "" {
		return Result{}, nil
	}

	token := cookie.ParseHeader(header)[o.cookieName]
	if token == "" {
		return Result{}, nil
	}

	return FromToken(token)
}

// FromToken decodes a raw ID token into a Result, for callers that hold the
// token outside a Cookie header. An empty token yields an empty Result.
func FromToken(token string) (Result, error) {
	if token == "" {
		return Result{}, nil
	}
	claims, err := Decode(token)
	if err != nil {
		return Result{}, err
	}
	return Result{
		AuthUser: &AuthUser{
			UID:           claims.UID(),
			Email:         claims.Email,
			EmailVerified: claims.EmailVerified,
		},
		IDToken: token,
	}, nil
}

// Decode parses the token payload without verifying its signature.
func Decode(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return claims, nil
}
