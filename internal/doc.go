// Package internal provides the core types and implementation of the firekit host.
//
// This package is internal and should not be used directly. Import
// "github.com/firekit/firekit" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: routing, the plugin chain, health probes and graceful shutdown
//   - Context: request/response access, auth cookie identity and fire injections
//   - Router: interface handlers use to declare routes
//   - Handler: implemented by types that declare routes on a router
//   - HandlerFunc: route handlers that return errors
//   - Middleware: wraps handlers; also the body of every Plugin
//   - Plugin: a named middleware in the ordered plugin chain
//
// # Plugin Chain
//
// Requests pass global middleware first, then the plugins in order. The
// fire plugin (source "firekit/main") is always part of the chain; it is
// prepended unless the list positions it explicitly with FirePlugin().
// For every request it:
//
//  1. parses the auth cookie (a malformed token is logged and ignored),
//  2. stores the decoded user and raw token in the request context,
//  3. runs server-side activation, registering the namespace under "fire".
//
// Activation failures in eager mode end the request with a 503 HTTPError.
//
// Plugins that depend on activation can be moved behind it:
//
//	app := internal.New(
//	    internal.WithFire(act),
//	    internal.WithPlugins(
//	        internal.Plugin{Src: "app/auth-guard", Middleware: guard},
//	        internal.FirePlugin(),
//	    ),
//	    internal.WithExtendPlugins(func(list []internal.Plugin) error {
//	        return plugins.MoveAfterFirekit(list, "auth-guard")
//	    }),
//	)
//
// # Context
//
// Context embeds context.Context, so it can be passed to any function
// expecting one. AuthUser and IDToken expose the cookie identity;
// Injected returns values registered by activation:
//
//	func (h *Notes) get(c internal.Context) error {
//	    ns, ok := c.Injected("fire")
//	    ...
//	}
//
// # Error Handling
//
// Errors returned from handlers go to the ErrorHandler. The default renders
// HTTPError values as JSON and turns anything else into a 500.
//
// # Server Runtime
//
//	err := app.Run(":8080",
//	    internal.Logger(log),
//	    internal.ShutdownHook(module.ShutdownHooks()...),
//	)
package internal
