package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firekit/firekit/pkg/activator"
	"github.com/firekit/firekit/pkg/authcookie"
	"github.com/firekit/firekit/pkg/backend"
	"github.com/firekit/firekit/pkg/storage"
)

const testSecret = "test-secret"

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"user_id":        "u1",
		"email":          "a@b.com",
		"email_verified": true,
		"iss":            "firekit-test",
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
}

func sessionWith(t *testing.T, token string) *backend.Session {
	t.Helper()
	res, err := authcookie.ParseHeader("firekit_auth_access_token=" + token)
	require.NoError(t, err)
	return backend.NewSession(backend.ContextWithAuth(context.Background(), res), "demo")
}

func TestRegister(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{IDAnalytics, IDAuth, IDDatabase, IDKV, IDStorage}, reg.IDs())

	err = Register(reg)
	require.ErrorIs(t, err, activator.ErrDuplicateService)

	defaults := Defaults()
	require.Len(t, defaults, 5)
	assert.True(t, defaults[4].ClientOnly)
	assert.Equal(t, IDAnalytics, defaults[4].ID)
}

func TestJWTVerifier(t *testing.T) {
	t.Parallel()

	v := &JWTVerifier{Secret: []byte(testSecret), Issuer: "firekit-test"}
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		user, err := v.Verify(ctx, signed(t, testSecret, validClaims()))
		require.NoError(t, err)
		assert.Equal(t, &User{UID: "u1", Email: "a@b.com", EmailVerified: true}, user)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		_, err := v.Verify(ctx, signed(t, "other", validClaims()))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		c := validClaims()
		c["exp"] = time.Now().Add(-time.Hour).Unix()
		_, err := v.Verify(ctx, signed(t, testSecret, c))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		t.Parallel()
		c := validClaims()
		delete(c, "exp")
		_, err := v.Verify(ctx, signed(t, testSecret, c))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		t.Parallel()
		c := validClaims()
		c["iss"] = "someone-else"
		_, err := v.Verify(ctx, signed(t, testSecret, c))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no subject", func(t *testing.T) {
		t.Parallel()
		c := validClaims()
		delete(c, "user_id")
		_, err := v.Verify(ctx, signed(t, testSecret, c))
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewAuth(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	v := &JWTVerifier{Secret: []byte(testSecret)}

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		a, err := NewAuth(ctx, backend.NewSession(ctx, "demo"), nil)
		require.NoError(t, err)
		assert.False(t, a.IsAuthenticated())
		assert.Empty(t, a.UID())
	})

	t.Run("verifier missing", func(t *testing.T) {
		t.Parallel()
		_, err := NewAuth(ctx, sessionWith(t, signed(t, testSecret, validClaims())), nil)
		require.ErrorIs(t, err, ErrVerifierMissing)
	})

	t.Run("rejected token", func(t *testing.T) {
		t.Parallel()
		a, err := NewAuth(ctx, sessionWith(t, signed(t, "other", validClaims())), v)
		require.NoError(t, err)
		assert.False(t, a.IsAuthenticated())
		require.ErrorIs(t, a.VerifyError(), ErrInvalidToken)
	})

	t.Run("verified", func(t *testing.T) {
		t.Parallel()
		a, err := NewAuth(ctx, sessionWith(t, signed(t, testSecret, validClaims())), v)
		require.NoError(t, err)
		u, ok := a.CurrentUser()
		require.True(t, ok)
		assert.Equal(t, "u1", u.UID)
		assert.Equal(t, "u1", a.UID())
	})
}

func TestAuthFactory_InjectsUser(t *testing.T) {
	t.Parallel()

	mod := backend.NewModule(backend.AppConfig{ProjectID: "demo", JWTSecret: testSecret})
	sess := sessionWith(t, signed(t, testSecret, validClaims()))

	injected := map[string]any{}
	h, err := newAuth(context.Background(), sess, mod, func(name string, v any) { injected[name] = v })
	require.NoError(t, err)
	assert.True(t, h.(*Auth).IsAuthenticated())
	require.Contains(t, injected, AuthUserKey)
	assert.Equal(t, "u1", injected[AuthUserKey].(*User).UID)
}

func TestFactories_MissingDependencies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mod := backend.NewModule(backend.AppConfig{ProjectID: "demo"})
	sess := backend.NewSession(ctx, "demo")
	noop := func(string, any) {}

	for name, f := range map[string]Factory{
		IDDatabase:  newDatabase,
		IDStorage:   newStorage,
		IDKV:        newKV,
		IDAnalytics: newAnalytics,
	} {
		_, err := f(ctx, sess, mod, noop)
		assert.ErrorIs(t, err, backend.ErrNotConfigured, name)
	}
}

func TestActivation_WithServices(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	require.NoError(t, err)
	mod := backend.NewModule(backend.AppConfig{ProjectID: "demo", JWTSecret: testSecret})

	t.Run("eager auth only", func(t *testing.T) {
		t.Parallel()
		a, err := activator.New(activator.Config{Services: []activator.ServiceConfig{{ID: IDAuth}}}, reg, backend.NewAppFactory(mod))
		require.NoError(t, err)

		res, err := authcookie.ParseHeader("firekit_auth_access_token=" + signed(t, testSecret, validClaims()))
		require.NoError(t, err)
		ctx := backend.ContextWithAuth(context.Background(), res)

		injected := map[string]any{}
		ns, err := a.Activate(ctx, activator.SideServer, func(n string, v any) { injected[n] = v })
		require.NoError(t, err)
		assert.Contains(t, injected, activator.NamespaceKey)
		assert.Contains(t, injected, AuthUserKey)

		auth, err := GetAuth(ctx, ns)
		require.NoError(t, err)
		assert.Equal(t, "u1", auth.UID())
	})

	t.Run("lazy isolates missing dependency", func(t *testing.T) {
		t.Parallel()
		a, err := activator.New(activator.Config{Lazy: true, Services: Defaults()}, reg, backend.NewAppFactory(mod))
		require.NoError(t, err)

		ctx := context.Background()
		ns, err := a.Activate(ctx, activator.SideServer, nil)
		require.NoError(t, err)

		_, err = GetDatabase(ctx, ns)
		require.ErrorIs(t, err, activator.ErrInitialization)
		require.ErrorIs(t, err, backend.ErrNotConfigured)

		_, err = GetAnalytics(ctx, ns)
		require.ErrorIs(t, err, activator.ErrWrongSide)

		auth, err := GetAuth(ctx, ns)
		require.NoError(t, err)
		assert.False(t, auth.IsAuthenticated())
	})

	t.Run("client side reaches client-only analytics", func(t *testing.T) {
		t.Parallel()
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
		t.Cleanup(func() { _ = client.Close() })
		withRedis := backend.NewModule(backend.AppConfig{ProjectID: "demo", JWTSecret: testSecret}, backend.WithRedis(client))

		a, err := activator.New(activator.Config{Lazy: true, Services: Defaults()}, reg, backend.NewAppFactory(withRedis))
		require.NoError(t, err)

		res, err := authcookie.ParseHeader("firekit_auth_access_token=" + signed(t, testSecret, validClaims()))
		require.NoError(t, err)
		ctx := backend.ContextWithAuth(context.Background(), res)

		ns, err := a.Activate(ctx, activator.SideClient, nil)
		require.NoError(t, err)
		events, err := GetAnalytics(ctx, ns)
		require.NoError(t, err)
		assert.Equal(t, "fire:demo:events", events.Stream())
		assert.Equal(t, "u1", events.uid)
	})
}

type fakeKV struct {
	data map[string]string
	ttl  map[string]time.Duration
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value any, exp time.Duration) *redis.StatusCmd {
	f.data[key] = value.(string)
	f.ttl[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestKV(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := &fakeKV{data: map[string]string{}, ttl: map[string]time.Duration{}}
	kv := NewKV(client, "demo")

	_, err := kv.Get(ctx, "theme")
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, "theme", "dark", time.Minute))
	assert.Equal(t, "dark", client.data["fire:demo:kv:theme"])
	assert.Equal(t, time.Minute, client.ttl["fire:demo:kv:theme"])

	v, err := kv.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)

	require.NoError(t, kv.Delete(ctx, "theme"))
	_, err = kv.Get(ctx, "theme")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

type fakeStream struct {
	args []*redis.XAddArgs
}

func (f *fakeStream) XAdd(_ context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.args = append(f.args, a)
	return redis.NewStringResult("1-0", nil)
}

func TestAnalytics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := &fakeStream{}
	sess := sessionWith(t, signed(t, testSecret, validClaims()))
	a := NewAnalytics(client, sess, "u1")

	id, err := a.LogEvent(ctx, "page_view", map[string]any{"path": "/"})
	require.NoError(t, err)
	assert.Equal(t, "1-0", id)

	require.Len(t, client.args, 1)
	got := client.args[0]
	assert.Equal(t, "fire:demo:events", got.Stream)
	assert.True(t, got.Approx)
	values := got.Values.(map[string]any)
	assert.Equal(t, "page_view", values["name"])
	assert.Equal(t, "u1", values["uid"])
	assert.Equal(t, sess.ID.String(), values["session_id"])
	assert.JSONEq(t, `{"path":"/"}`, values["params"].(string))

	_, err = a.LogEvent(ctx, "bad name!", nil)
	require.ErrorIs(t, err, ErrInvalidEventName)
	assert.Len(t, client.args, 1)
}

func TestStorage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory("https://files.example")

	anon := NewStorage(store, "demo", "")
	_, err := anon.Upload(ctx, "a.txt", strings.NewReader("x"), 1)
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = anon.List(ctx)
	require.ErrorIs(t, err, ErrUnauthenticated)

	s := NewStorage(store, "demo", "u1")
	prefix, err := s.Prefix()
	require.NoError(t, err)
	assert.Equal(t, "demo/users/u1/", prefix)

	_, err = s.Upload(ctx, "notes.txt", strings.NewReader("hello"), 5)
	require.NoError(t, err)

	rc, err := s.Download(ctx, "notes.txt")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(body))

	files, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "notes.txt", files[0].Key)

	url, err := s.URL(ctx, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example/demo/users/u1/notes.txt", url)

	require.NoError(t, s.Delete(ctx, "notes.txt"))
	_, err = s.Download(ctx, "notes.txt")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.Download(ctx, "/")
	require.ErrorIs(t, err, storage.ErrInvalidKey)
}

func TestDatabase_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := NewDatabase(nil, "demo", "")

	_, err := d.Collection("").Get(ctx, "x")
	require.ErrorIs(t, err, ErrInvalidPath)
	_, err = d.Collection("notes").Set(ctx, "a/b", map[string]string{})
	require.ErrorIs(t, err, ErrInvalidPath)
	require.ErrorIs(t, d.Collection("notes").Delete(ctx, ""), ErrInvalidPath)

	_, err = d.Collection("notes").Set(ctx, "n1", func() {})
	require.ErrorIs(t, err, ErrEncode)

	_, err = d.Collection("notes").List(ctx, ListOptions{Owned: true})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestListLimit(t *testing.T) {
	t.Parallel()
	assert.Equal(t, defaultListLimit, listLimit(0))
	assert.Equal(t, 10, listLimit(10))
	assert.Equal(t, maxListLimit, listLimit(5000))
}

func TestDocument_Decode(t *testing.T) {
	t.Parallel()

	d := Document{Data: []byte(`{"title":"hi"}`)}
	var v struct{ Title string }
	require.NoError(t, d.Decode(&v))
	assert.Equal(t, "hi", v.Title)

	d.Data = []byte(`{`)
	require.ErrorIs(t, d.Decode(&v), ErrDecode)
}
