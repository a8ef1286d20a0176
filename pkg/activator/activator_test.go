package activator_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firekit/firekit/pkg/activator"
)

type testModule struct{ name string }

type testSession struct{ id int }

type testHandle struct{ service string }

// injections records values handed to the InjectFunc.
type injections struct {
	values map[string]any
	calls  map[string]int
	mu     sync.Mutex
}

func newInjections() *injections {
	return &injections{values: map[string]any{}, calls: map[string]int{}}
}

func (i *injections) inject(name string, value any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.values[name] = value
	i.calls[name]++
}

func (i *injections) get(name string) (any, int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.values[name], i.calls[name]
}

type fixture struct {
	registry  *activator.Registry[*testModule, *testSession]
	appCalls  atomic.Int32
	svcCalls  map[string]*atomic.Int32
	appErr    error
	failing   map[string]error
	module    *testModule
	sessionID atomic.Int32
}

func newFixture(t *testing.T, ids ...string) *fixture {
	t.Helper()

	f := &fixture{
		registry: activator.NewRegistry[*testModule, *testSession](),
		svcCalls: map[string]*atomic.Int32{},
		failing:  map[string]error{},
		module:   &testModule{name: "sdk"},
	}
	for _, id := range ids {
		counter := &atomic.Int32{}
		f.svcCalls[id] = counter
		require.NoError(t, f.registry.Register(id, func(_ context.Context, sess *testSession, mod *testModule, _ activator.InjectFunc) (any, error) {
			counter.Add(1)
			if err := f.failing[id]; err != nil {
				return nil, err
			}
			if sess == nil || mod == nil {
				return nil, errors.New("missing session or module")
			}
			return &testHandle{service: id}, nil
		}))
	}
	return f
}

func (f *fixture) appFactory(_ context.Context) (*testModule, *testSession, error) {
	f.appCalls.Add(1)
	if f.appErr != nil {
		return nil, nil, f.appErr
	}
	return f.module, &testSession{id: int(f.sessionID.Add(1))}, nil
}

func (f *fixture) activator(t *testing.T, cfg activator.Config) *activator.Activator[*testModule, *testSession] {
	t.Helper()
	a, err := activator.New(cfg, f.registry, f.appFactory)
	require.NoError(t, err)
	return a
}

func services(clientOnly []string, ids ...string) []activator.ServiceConfig {
	out := make([]activator.ServiceConfig, 0, len(ids))
	for _, id := range ids {
		sc := activator.ServiceConfig{ID: id}
		for _, c := range clientOnly {
			if c == id {
				sc.ClientOnly = true
			}
		}
		out = append(out, sc)
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "auth", "database")

	t.Run("nil registry", func(t *testing.T) {
		t.Parallel()
		_, err := activator.New[*testModule, *testSession](activator.Config{}, nil, f.appFactory)
		require.ErrorIs(t, err, activator.ErrConfiguration)
	})

	t.Run("nil app factory", func(t *testing.T) {
		t.Parallel()
		_, err := activator.New(activator.Config{}, f.registry, nil)
		require.ErrorIs(t, err, activator.ErrConfiguration)
	})

	t.Run("unknown service", func(t *testing.T) {
		t.Parallel()
		_, err := activator.New(activator.Config{Services: services(nil, "auth", "analytics")}, f.registry, f.appFactory)
		require.ErrorIs(t, err, activator.ErrConfiguration)
		require.ErrorIs(t, err, activator.ErrUnknownService)
	})

	t.Run("duplicate service", func(t *testing.T) {
		t.Parallel()
		_, err := activator.New(activator.Config{Services: services(nil, "auth", "auth")}, f.registry, f.appFactory)
		require.ErrorIs(t, err, activator.ErrConfiguration)
		require.ErrorIs(t, err, activator.ErrDuplicateService)
	})

	t.Run("empty id", func(t *testing.T) {
		t.Parallel()
		_, err := activator.New(activator.Config{Services: []activator.ServiceConfig{{ID: ""}}}, f.registry, f.appFactory)
		require.ErrorIs(t, err, activator.ErrConfiguration)
	})
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := activator.NewRegistry[*testModule, *testSession]()
	factory := func(context.Context, *testSession, *testModule, activator.InjectFunc) (any, error) { return nil, nil }

	require.NoError(t, reg.Register("storage", factory))
	require.NoError(t, reg.Register("auth", factory))
	require.ErrorIs(t, reg.Register("auth", factory), activator.ErrDuplicateService)
	require.ErrorIs(t, reg.Register("", factory), activator.ErrConfiguration)
	require.ErrorIs(t, reg.Register("kv", nil), activator.ErrConfiguration)

	assert.Equal(t, []string{"auth", "storage"}, reg.IDs())

	_, ok := reg.Lookup("auth")
	assert.True(t, ok)
	_, ok = reg.Lookup("kv")
	assert.False(t, ok)

	assert.Panics(t, func() { reg.MustRegister("auth", factory) })
}

func TestActivate_Eager(t *testing.T) {
	t.Parallel()

	t.Run("keys equal enabled services", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "auth", "database", "analytics")
		a := f.activator(t, activator.Config{Services: services([]string{"analytics"}, "auth", "database", "analytics")})

		inj := newInjections()
		ns, err := a.Activate(context.Background(), activator.SideServer, inj.inject)
		require.NoError(t, err)

		assert.Equal(t, []string{"auth", "database", "analytics"}, ns.Keys())
		assert.Equal(t, int32(1), f.appCalls.Load())
		assert.Equal(t, int32(1), f.svcCalls["auth"].Load())
		assert.Equal(t, int32(1), f.svcCalls["database"].Load())
		assert.Equal(t, int32(0), f.svcCalls["analytics"].Load(), "client-only service must not run on the server")

		h, ok := ns.Service("auth")
		require.True(t, ok)
		assert.Equal(t, "auth", h.(*testHandle).service)

		_, ok = ns.Service("analytics")
		assert.False(t, ok)

		injected, calls := inj.get(activator.NamespaceKey)
		assert.Same(t, ns, injected)
		assert.Equal(t, 1, calls)
		_, calls = inj.get(activator.ModuleKey)
		assert.Zero(t, calls)
	})

	t.Run("client side initializes every service", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "auth", "analytics")
		a := f.activator(t, activator.Config{Services: services([]string{"analytics"}, "auth", "analytics")})

		ns, err := a.Activate(context.Background(), activator.SideClient, nil)
		require.NoError(t, err)

		assert.Equal(t, int32(1), f.svcCalls["auth"].Load())
		assert.Equal(t, int32(1), f.svcCalls["analytics"].Load())
		_, ok := ns.Service("analytics")
		assert.True(t, ok)
	})

	t.Run("inject module after activation", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "auth")
		a := f.activator(t, activator.Config{Services: services(nil, "auth"), InjectModule: true})

		inj := newInjections()
		_, err := a.Activate(context.Background(), activator.SideServer, inj.inject)
		require.NoError(t, err)

		mod, calls := inj.get(activator.ModuleKey)
		assert.Equal(t, 1, calls)
		assert.Same(t, f.module, mod)
	})

	t.Run("service failure fails activation", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "auth", "database")
		boom := errors.New("boom")
		f.failing["database"] = boom
		a := f.activator(t, activator.Config{Services: services(nil, "auth", "database"), InjectModule: true})

		inj := newInjections()
		ns, err := a.Activate(context.Background(), activator.SideServer, inj.inject)
		require.Error(t, err)
		require.Nil(t, ns)
		assert.ErrorIs(t, err, activator.ErrInitialization)
		assert.ErrorIs(t, err, boom)

		_, calls := inj.get(activator.NamespaceKey)
		assert.Zero(t, calls, "no partial namespace may be injected")
		_, calls = inj.get(activator.ModuleKey)
		assert.Zero(t, calls)
	})

	t.Run("app failure fails activation", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "auth")
		f.appErr = errors.New("no credentials")
		a := f.activator(t, activator.Config{Services: services(nil, "auth")})

		_, err := a.Activate(context.Background(), activator.SideServer, nil)
		require.ErrorIs(t, err, activator.ErrInitialization)
		assert.ErrorIs(t, err, f.appErr)
		assert.Equal(t, int32(0), f.svcCalls["auth"].Load())
	})
}

func TestActivate_Lazy(t *testing.T) {
	t.Parallel()

	t.Run("namespace is injected before any initialization", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "auth", "database")
		a := f.activator(t, activator.Config{Services: services(nil, "auth", "database"), Lazy: true})

		inj := newInjections()
		ns, err := a.Activate(context.Background(), activator.SideServer, inj.inject)
		require.NoError(t, err)

		injected, _ := inj.get(activator.NamespaceKey)
		assert.Same(t, ns, injected)
		assert.Equal(t, []string{"auth", "database"}, ns.Keys())
		assert.Zero(t, f.appCalls.Load())

		for _, id := range ns.Keys() {
			_, ok := ns.Service(id)
			assert.False(t, ok, "slot %q must start unset", id)
		}
	})

	t.Run("ready accessor is memoized", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "auth")
		a := f.activator(t, activator.Config{Services: services(nil, "auth"), Lazy: true})
		ns, err := a.Activate(context.Background(), activator.SideServer, nil)
		require.NoError(t, err)

		first, err := ns.ServiceReady(context.Background(), "auth")
		require.NoError(t, err)
		second, err := ns.ServiceReady(context.Background(), "auth")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, int32(1), f.svcCalls["auth"].Load())
		assert.Equal(t, int32(1), f.appCalls.Load())

		h, ok := ns.Service("auth")
		require.True(t, ok)
		assert.Same(t, first, h)
	})

	t.Run("concurrent accessors share one app initialization", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "auth", "database", "storage")
		a := f.activator(t, activator.Config{Services: services(nil, "auth", "database", "storage"), Lazy: true, InjectModule: true})

		inj := newInjections()
		ns, err := a.Activate(context.Background(), activator.SideServer, inj.inject)
		require.NoError(t, err)

		var wg sync.WaitGroup
		sessions := make(chan *testSession, 60)
		for i := range 60 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id := ns.Keys()[i%3]
				_, err := ns.ServiceReady(context.Background(), id)
				assert.NoError(t, err)
				sess, err := ns.AppReady(context.Background())
				assert.NoError(t, err)
				sessions <- sess
			}()
		}
		wg.Wait()
		close(sessions)

		assert.Equal(t, int32(1), f.appCalls.Load())
		for id, counter := range f.svcCalls {
			assert.Equal(t, int32(1), counter.Load(), "service %q", id)
		}

		var first *testSession
		for sess := range sessions {
			if first == nil {
				first = sess
			}
			assert.Same(t, first, sess)
		}

		_, calls := inj.get(activator.ModuleKey)
		assert.Equal(t, 1, calls)
	})

	t.Run("app failure is permanent", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "auth", "database")
		f.appErr = errors.New("invalid project")
		a := f.activator(t, activator.Config{Services: services(nil, "auth", "database"), Lazy: true, InjectModule: true})

		inj := newInjections()
		ns, err := a.Activate(context.Background(), activator.SideServer, inj.inject)
		require.NoError(t, err)

		_, err = ns.ServiceReady(context.Background(), "auth")
		require.ErrorIs(t, err, f.appErr)
		_, err = ns.ServiceReady(context.Background(), "database")
		require.ErrorIs(t, err, f.appErr)
		_, err = ns.AppReady(context.Background())
		require.ErrorIs(t, err, activator.ErrInitialization)

		assert.Equal(t, int32(1), f.appCalls.Load())
		assert.Zero(t, f.svcCalls["auth"].Load())
		_, calls := inj.get(activator.ModuleKey)
		assert.Zero(t, calls)
	})

	t.Run("service failure is isolated", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "auth", "database")
		boom := errors.New("connection refused")
		f.failing["database"] = boom
		a := f.activator(t, activator.Config{Services: services(nil, "auth", "database"), Lazy: true})
		ns, err := a.Activate(context.Background(), activator.SideServer, nil)
		require.NoError(t, err)

		_, err = ns.ServiceReady(context.Background(), "database")
		require.ErrorIs(t, err, boom)

		h, err := ns.ServiceReady(context.Background(), "auth")
		require.NoError(t, err)
		assert.Equal(t, "auth", h.(*testHandle).service)

		// The failure is remembered, the factory is not retried.
		_, err = ns.ServiceReady(context.Background(), "database")
		require.ErrorIs(t, err, boom)
		assert.Equal(t, int32(1), f.svcCalls["database"].Load())
	})

	t.Run("combined ready waits for every side service", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "auth", "database", "analytics")
		a := f.activator(t, activator.Config{Services: services([]string{"analytics"}, "auth", "database", "analytics"), Lazy: true})
		ns, err := a.Activate(context.Background(), activator.SideServer, nil)
		require.NoError(t, err)

		sess, err := ns.Ready(context.Background())
		require.NoError(t, err)
		require.NotNil(t, sess)

		_, ok := ns.Service("auth")
		assert.True(t, ok)
		_, ok = ns.Service("database")
		assert.True(t, ok)
		assert.Zero(t, f.svcCalls["analytics"].Load())

		again, err := ns.Ready(context.Background())
		require.NoError(t, err)
		assert.Same(t, sess, again)
	})

	t.Run("namespaces do not share state", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "auth")
		a := f.activator(t, activator.Config{Services: services(nil, "auth"), Lazy: true})

		ns1, err := a.Activate(context.Background(), activator.SideServer, nil)
		require.NoError(t, err)
		ns2, err := a.Activate(context.Background(), activator.SideServer, nil)
		require.NoError(t, err)

		s1, err := ns1.AppReady(context.Background())
		require.NoError(t, err)
		s2, err := ns2.AppReady(context.Background())
		require.NoError(t, err)

		assert.NotSame(t, s1, s2)
		assert.Equal(t, int32(2), f.appCalls.Load())
	})
}

func TestNamespace_AccessErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "auth", "analytics")
	a := f.activator(t, activator.Config{Services: services([]string{"analytics"}, "auth", "analytics"), Lazy: true})
	ns, err := a.Activate(context.Background(), activator.SideServer, nil)
	require.NoError(t, err)

	_, err = ns.ServiceReady(context.Background(), "storage")
	require.ErrorIs(t, err, activator.ErrServiceNotEnabled)

	_, err = ns.ServiceReady(context.Background(), "analytics")
	require.ErrorIs(t, err, activator.ErrWrongSide)
	assert.Zero(t, f.appCalls.Load(), "access errors must not initialize the app")
}

func TestNamespace_PanickingFactory(t *testing.T) {
	t.Parallel()

	reg := activator.NewRegistry[*testModule, *testSession]()
	reg.MustRegister("auth", func(context.Context, *testSession, *testModule, activator.InjectFunc) (any, error) {
		panic("unexpected nil config")
	})
	a, err := activator.New(activator.Config{Services: services(nil, "auth"), Lazy: true}, reg,
		func(context.Context) (*testModule, *testSession, error) {
			return &testModule{}, &testSession{}, nil
		})
	require.NoError(t, err)

	ns, err := a.Activate(context.Background(), activator.SideServer, nil)
	require.NoError(t, err)

	_, err = ns.ServiceReady(context.Background(), "auth")
	require.ErrorIs(t, err, activator.ErrInitializerPanic)
	require.ErrorIs(t, err, activator.ErrInitialization)

	_, ok := ns.Service("auth")
	assert.False(t, ok)
}

func TestGet(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "auth")
	a := f.activator(t, activator.Config{Services: services(nil, "auth"), Lazy: true})
	ns, err := a.Activate(context.Background(), activator.SideServer, nil)
	require.NoError(t, err)

	h, err := activator.Get[*testHandle](context.Background(), ns, "auth")
	require.NoError(t, err)
	assert.Equal(t, "auth", h.service)

	_, err = activator.Get[*testModule](context.Background(), ns, "auth")
	require.ErrorIs(t, err, activator.ErrServiceType)
}

func TestHook(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "auth")
	f.failing["auth"] = errors.New("denied")
	a := f.activator(t, activator.Config{Services: services(nil, "auth")})

	hook := a.Hook(activator.SideServer)
	err := hook(context.Background(), newInjections().inject)
	require.ErrorIs(t, err, activator.ErrInitialization)
}

func TestSide_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "server", activator.SideServer.String())
	assert.Equal(t, "client", activator.SideClient.String())
	assert.Equal(t, "side(7)", activator.Side(7).String())
}
