// Package activator turns a validated service configuration into a per-context
// namespace of service accessors.
//
// Services are registered once at startup in a Registry, keyed by identifier.
// An Activator pairs that registry with a Config and an AppFactory. For every
// execution context (typically one HTTP request) the host calls Activate, which
// returns a Namespace owning all state for that context.
//
// # Eager and lazy modes
//
// In eager mode Activate initializes the app session, then runs every service
// relevant to the current Side concurrently and waits for all of them. A single
// failure fails the activation and no namespace is injected.
//
// In lazy mode Activate returns immediately. Each service resolves on its first
// ServiceReady call, which initializes the session first if needed. Both the
// session and each service are computed at most once per namespace:
//
//	act, err := activator.New(cfg, registry, backend.NewAppFactory(module))
//	if err != nil {
//		return err
//	}
//
//	ns, err := act.Activate(ctx, activator.SideServer, inject)
//	if err != nil {
//		return err
//	}
//
//	auth, err := activator.Get[*services.Auth](ctx, ns, "auth")
//
// # Sides
//
// Services flagged client-only are skipped on the server side. They still
// appear in Keys, but their accessors return ErrWrongSide there.
//
// # Injection
//
// The namespace is handed to the host's InjectFunc under NamespaceKey. When
// Config.InjectModule is set, the raw module handle is injected under
// ModuleKey the first time it is computed.
package activator
