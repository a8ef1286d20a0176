package internal

import (
	"context"
	"log/slog"
	"sync"

	"github.com/firekit/firekit/pkg/activator"
	"github.com/firekit/firekit/pkg/authcookie"
	"github.com/firekit/firekit/pkg/backend"
	"github.com/firekit/firekit/pkg/plugins"
)

// Plugin is a named middleware in the app's ordered plugin chain.
// A plugin whose Src is plugins.OwnPlugin is the fire activation plugin;
// its Middleware is supplied by the app.
type Plugin struct {
	Middleware Middleware
	Src        string
}

// Source implements plugins.Descriptor.
func (p Plugin) Source() string {
	return p.Src
}

// FirePlugin returns the placeholder for the fire activation plugin.
// Use it to position activation explicitly within WithPlugins.
func FirePlugin() Plugin {
	return Plugin{Src: plugins.OwnPlugin}
}

// FireActivator is the part of an activator.Activator the host uses.
type FireActivator interface {
	Hook(side activator.Side) func(ctx context.Context, inject activator.InjectFunc) error
}

type injectionsKey struct{}

// injections holds the values registered by fire activation for one request.
// Lazy services may inject from concurrent goroutines.
type injections struct {
	values map[string]any
	mu     sync.RWMutex
}

func newInjections() *injections {
	return &injections{values: make(map[string]any)}
}

func (i *injections) set(name string, value any) {
	i.mu.Lock()
	i.values[name] = value
	i.mu.Unlock()
}

func (i *injections) get(name string) (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.values[name]
	return v, ok
}

// firePlugin reads the auth cookie, stores the result in the request
// context and runs server-side activation against a fresh injection set.
// A malformed cookie is treated as anonymous.
func (a *App) firePlugin() Middleware {
	var hook func(context.Context, activator.InjectFunc) error
	if a.fire != nil {
		hook = a.fire.Hook(activator.SideServer)
	}
	opts := []authcookie.Option{
		authcookie.WithCookieName(a.cookieManager.AuthTokenName()),
		authcookie.WithStatic(a.staticExport),
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			res, err := authcookie.Parse(c.Request(), opts...)
			if err != nil {
				c.LogWarn("fire: ignoring malformed auth cookie", slog.Any("error", err))
				res = authcookie.Result{}
			}

			inj := newInjections()
			ctx := backend.ContextWithAuth(c.Context(), res)
			c.SetContext(context.WithValue(ctx, injectionsKey{}, inj))

			if hook != nil {
				if err := hook(c.Context(), inj.set); err != nil {
					return ErrServiceUnavailable("", WithErrorCode("fire/activation-failed"), WithError(err))
				}
			}
			return next(c)
		}
	}
}

// pluginChain resolves the configured plugins into middleware, in order.
// The fire plugin is prepended when the list does not name it.
func (a *App) pluginChain() []Middleware {
	list := a.plugins
	if !hasFirePlugin(list) {
		list = append([]Plugin{FirePlugin()}, list...)
	}

	chain := make([]Middleware, 0, len(list))
	for _, p := range list {
		switch {
		case p.Src == plugins.OwnPlugin:
			chain = append(chain, a.firePlugin())
		case p.Middleware != nil:
			chain = append(chain, p.Middleware)
		}
	}
	return chain
}

func hasFirePlugin(list []Plugin) bool {
	for _, p := range list {
		if p.Src == plugins.OwnPlugin {
			return true
		}
	}
	return false
}
