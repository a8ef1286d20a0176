package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/supabase-community/supabase-go"

	"github.com/firekit/firekit/pkg/activator"
	"github.com/firekit/firekit/pkg/authcookie"
	"github.com/firekit/firekit/pkg/backend"
)

// AuthUserKey is the injection name of the verified user.
const AuthUserKey = "fireAuthUser"

// User is a verified identity.
type User struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Verifier checks an ID token and returns the identity it carries.
type Verifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

// Auth exposes the verified user of one execution context.
type Auth struct {
	user      *User
	verifyErr error
}

// CurrentUser returns the verified user, if any.
func (a *Auth) CurrentUser() (*User, bool) {
	return a.user, a.user != nil
}

// IsAuthenticated reports whether the context carried a valid token.
func (a *Auth) IsAuthenticated() bool {
	return a.user != nil
}

// UID returns the verified user id, or "".
func (a *Auth) UID() string {
	if a.user == nil {
		return ""
	}
	return a.user.UID
}

// VerifyError returns why a present token was rejected.
func (a *Auth) VerifyError() error {
	return a.verifyErr
}

// NewAuth verifies the session token with v. A rejected token leaves the
// context unauthenticated; only a missing verifier is an error.
func NewAuth(ctx context.Context, sess *backend.Session, v Verifier) (*Auth, error) {
	if !sess.Authenticated() {
		return &Auth{}, nil
	}
	if v == nil {
		return nil, ErrVerifierMissing
	}

	user, err := v.Verify(ctx, sess.IDToken)
	if err != nil {
		return &Auth{verifyErr: err}, nil
	}
	return &Auth{user: user}, nil
}

// sessionAuth verifies the session token once per session.
func sessionAuth(ctx context.Context, sess *backend.Session, mod *backend.Module) (*Auth, error) {
	v, err := sess.Verified(func() (any, error) {
		return NewAuth(ctx, sess, verifierFor(mod))
	})
	if err != nil {
		return nil, err
	}
	return v.(*Auth), nil
}

// verifiedUID returns the uid of the verified session user. An absent or
// rejected token, or a project without a verifier, yields "".
func verifiedUID(ctx context.Context, sess *backend.Session, mod *backend.Module) string {
	a, err := sessionAuth(ctx, sess, mod)
	if err != nil {
		return ""
	}
	return a.UID()
}

func newAuth(ctx context.Context, sess *backend.Session, mod *backend.Module, inject activator.InjectFunc) (any, error) {
	a, err := sessionAuth(ctx, sess, mod)
	if err != nil {
		return nil, err
	}
	if err := a.VerifyError(); err != nil {
		mod.Logger.WarnContext(ctx, "id token rejected", slog.Any("error", err))
	}
	if u, ok := a.CurrentUser(); ok {
		inject(AuthUserKey, u)
	}
	return a, nil
}

func verifierFor(mod *backend.Module) Verifier {
	switch {
	case mod.Supabase != nil && mod.Redis != nil:
		return NewCachedVerifier(&SupabaseVerifier{Client: mod.Supabase}, mod.Redis, mod.Config.ProjectID)
	case mod.Supabase != nil:
		return &SupabaseVerifier{Client: mod.Supabase}
	case mod.Config.JWTSecret != "":
		return &JWTVerifier{Secret: []byte(mod.Config.JWTSecret), Issuer: mod.Config.Issuer}
	default:
		return nil
	}
}

// JWTVerifier verifies HS256 tokens with a shared secret.
type JWTVerifier struct {
	Issuer string
	Secret []byte
}

// Verify implements Verifier.
func (v *JWTVerifier) Verify(_ context.Context, token string) (*User, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}

	claims := &authcookie.Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.Secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.UID() == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	return &User{
		UID:           claims.UID(),
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// SupabaseVerifier asks Supabase Auth for the token's user.
type SupabaseVerifier struct {
	Client *supabase.Client
}

// Verify implements Verifier. The Supabase client does not take a context.
func (v *SupabaseVerifier) Verify(_ context.Context, token string) (*User, error) {
	if v.Client == nil {
		return nil, ErrVerifierMissing
	}
	resp, err := v.Client.Auth.WithToken(token).GetUser()
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return &User{
		UID:           resp.ID.String(),
		Email:         resp.Email,
		EmailVerified: resp.EmailConfirmedAt != nil,
	}, nil
}
