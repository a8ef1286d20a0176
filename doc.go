// Package firekit wires a backend-as-a-service stack into an HTTP host's
// request lifecycle.
//
// Every request gets a namespace of service accessors (auth, database,
// storage, kv, analytics) built by the activator from a validated
// configuration. Services resolve eagerly before the handler runs or lazily
// on first use, and each is initialized at most once per request.
//
// # Quick Start
//
//	module, err := backend.Open(ctx, cfg.Backend(), backend.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	reg, err := services.NewRegistry()
//	if err != nil {
//	    return err
//	}
//	act, err := activator.New(cfg.Fire, reg, backend.NewAppFactory(module))
//	if err != nil {
//	    return err
//	}
//
//	app := firekit.New(
//	    firekit.WithFire(act),
//	    firekit.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    firekit.WithHealthChecks(firekit.WithReadinessChecks(module.Healthchecks())),
//	    firekit.WithHandlers(handlers.NewNotes()),
//	)
//	return app.Run(":8080", firekit.ShutdownHook(module.Close))
//
// # Handlers
//
// Handlers reach the namespace with Fire and resolve services through the
// typed getters in pkg/services:
//
//	func (h *Notes) get(c firekit.Context) error {
//	    ns, err := firekit.Fire(c)
//	    if err != nil {
//	        return err
//	    }
//	    db, err := services.GetDatabase(c, ns)
//	    if err != nil {
//	        return err
//	    }
//	    doc, err := db.Collection("notes").Get(c, c.Param("id"))
//	    if errors.Is(err, services.ErrDocumentNotFound) {
//	        return firekit.ErrNotFound("note not found")
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, doc)
//	}
//
// # Identity
//
// The fire plugin decodes the auth cookie (firekit_auth_access_token) without
// verifying it; c.AuthUser() and c.IDToken() expose the result. The auth
// service verifies the token before reporting a user as authenticated.
//
// # Plugins
//
// Plugins are named middleware run in order after global middleware. Fire
// activation is the plugin "firekit/main". Plugins that need activation can
// be moved behind it:
//
//	firekit.New(
//	    firekit.WithPlugins(firekit.NamedPlugin("app/auth-guard", guard)),
//	    firekit.WithExtendPlugins(firekit.MoveAfterFirekit("auth-guard")),
//	)
package firekit
