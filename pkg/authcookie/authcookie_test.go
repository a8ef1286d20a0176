package authcookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firekit/firekit/pkg/authcookie"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return token
}

func TestParse(t *testing.T) {
	t.Parallel()

	token := signToken(t, jwt.MapClaims{
		"user_id":        "u1",
		"email":          "a@b.com",
		"email_verified": true,
	})

	t.Run("no cookie header", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		res, err := authcookie.Parse(r)
		require.NoError(t, err)
		assert.Nil(t, res.AuthUser)
		assert.Empty(t, res.IDToken)
		assert.True(t, res.Empty())
	})

	t.Run("cookie header without token", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Cookie", "theme=dark; lang=en")

		res, err := authcookie.Parse(r)
		require.NoError(t, err)
		assert.Nil(t, res.AuthUser)
		assert.Empty(t, res.IDToken)
	})

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Cookie", "theme=dark; firekit_auth_access_token="+token)

		res, err := authcookie.Parse(r)
		require.NoError(t, err)
		require.NotNil(t, res.AuthUser)
		assert.Equal(t, authcookie.AuthUser{UID: "u1", Email: "a@b.com", EmailVerified: true}, *res.AuthUser)
		assert.Equal(t, token, res.IDToken)
	})

	t.Run("static export", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Cookie", "firekit_auth_access_token="+token)

		res, err := authcookie.Parse(r, authcookie.WithStatic(true))
		require.NoError(t, err)
		assert.True(t, res.Empty())
		assert.Nil(t, res.AuthUser)
	})

	t.Run("custom cookie name", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Cookie", "__session="+token)

		res, err := authcookie.Parse(r, authcookie.WithCookieName("__session"))
		require.NoError(t, err)
		require.NotNil(t, res.AuthUser)
		assert.Equal(t, "u1", res.AuthUser.UID)
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Cookie", "firekit_auth_access_token=not-a-jwt")

		res, err := authcookie.Parse(r)
		require.ErrorIs(t, err, authcookie.ErrDecode)
		assert.True(t, res.Empty())
	})

	t.Run("nil request", func(t *testing.T) {
		t.Parallel()
		res, err := authcookie.Parse(nil)
		require.NoError(t, err)
		assert.True(t, res.Empty())
	})
}

func TestDecode(t *testing.T) {
	t.Parallel()

	token := signToken(t, jwt.MapClaims{
		"user_id": "u2",
		"sub":     "u2",
		"iss":     "https://issuer.example",
	})

	claims, err := authcookie.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "u2", claims.UserID)
	assert.Equal(t, "u2", claims.Subject)
	assert.Equal(t, "https://issuer.example", claims.Issuer)
	assert.False(t, claims.EmailVerified)

	_, err = authcookie.Decode("a.b")
	require.ErrorIs(t, err, authcookie.ErrDecode)
}

func TestParse_SubjectFallback(t *testing.T) {
	t.Parallel()

	token := signToken(t, jwt.MapClaims{"sub": "from-sub", "email": "s@b.com"})
	res, err := authcookie.ParseHeader("firekit_auth_access_token=" + token)
	require.NoError(t, err)
	require.NotNil(t, res.AuthUser)
	assert.Equal(t, "from-sub", res.AuthUser.UID)
	assert.Equal(t, "s@b.com", res.AuthUser.Email)
}

func TestFromToken(t *testing.T) {
	t.Parallel()

	res, err := authcookie.FromToken("")
	require.NoError(t, err)
	assert.True(t, res.Empty())

	token := signToken(t, jwt.MapClaims{"user_id": "u1", "email": "a@b.com"})
	res, err = authcookie.FromToken(token)
	require.NoError(t, err)
	require.NotNil(t, res.AuthUser)
	assert.Equal(t, "u1", res.AuthUser.UID)
	assert.Equal(t, token, res.IDToken)

	_, err = authcookie.FromToken("not-a-jwt")
	require.ErrorIs(t, err, authcookie.ErrDecode)
}
