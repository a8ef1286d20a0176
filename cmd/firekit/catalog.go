package main

import (
	"fmt"
	"slices"

	"github.com/firekit/firekit"
	"github.com/firekit/firekit/middlewares"
	"github.com/firekit/firekit/pkg/plugins"
)

// Built-in plugin paths accepted in plugins.order.
const (
	pluginRequestID   = "firekit/request-id"
	pluginRecover     = "firekit/recover"
	pluginRequireAuth = "firekit/require-auth"
)

type pluginBuilder func(opts map[string]any) firekit.Middleware

var catalog = map[string]pluginBuilder{
	pluginRequestID: func(opts map[string]any) firekit.Middleware {
		var o []middlewares.RequestIDOption
		if h, ok := opts["response_header"].(string); ok && h != "" {
			o = append(o, middlewares.WithRequestIDResponseHeader(h))
		}
		return middlewares.RequestID(o...)
	},
	pluginRecover: func(opts map[string]any) firekit.Middleware {
		o := []middlewares.RecoverOption{middlewares.WithRecoverHTTPError()}
		if flag(opts, "disable_stack") {
			o = append(o, middlewares.WithRecoverDisablePrintStack())
		}
		return middlewares.Recover(o...)
	},
	pluginRequireAuth: func(opts map[string]any) firekit.Middleware {
		var o []middlewares.AuthOption
		if flag(opts, "verified") {
			o = append(o, middlewares.WithVerifiedToken())
		}
		if flag(opts, "email_verified") {
			o = append(o, middlewares.WithEmailVerified())
		}
		return middlewares.RequireAuth(o...)
	},
}

func flag(opts map[string]any, key string) bool {
	v, _ := opts[key].(bool)
	return v
}

// orderRefs moves each move_after_firekit name, in turn, directly behind
// the fire plugin. refs is not modified.
func orderRefs(refs []plugins.Ref, moveAfter []string) ([]plugins.Ref, error) {
	out := slices.Clone(refs)
	for _, name := range moveAfter {
		if err := plugins.MoveAfterFirekit(out, name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// buildPlugins resolves refs against the built-in catalog.
func buildPlugins(refs []plugins.Ref) ([]firekit.Plugin, error) {
	list := make([]firekit.Plugin, 0, len(refs))
	for _, ref := range refs {
		if ref.Src == plugins.OwnPlugin {
			list = append(list, firekit.FirePlugin())
			continue
		}
		build, ok := catalog[ref.Src]
		if !ok {
			return nil, fmt.Errorf("unknown plugin %q", ref.Src)
		}
		list = append(list, firekit.NamedPlugin(ref.Src, build(ref.Options)))
	}
	return list, nil
}
