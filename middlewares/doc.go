// Package middlewares provides HTTP middleware for firekit applications.
//
// # Request ID
//
// RequestID assigns an ID to each request, reusing a well-formed upstream
// X-Request-ID or X-Correlation-ID header and generating a UUID otherwise.
// Pair it with RequestIDExtractor to get request_id on every log record:
//
//	app := firekit.New(
//	    firekit.WithLogger("api", middlewares.RequestIDExtractor()),
//	    firekit.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover turns panics into *PanicError values for the error handler.
// Register it before the plugin chain runs, i.e. as global middleware:
//
//	firekit.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Recover(middlewares.WithRecoverHTTPError()),
//	)
//
// # RequireAuth
//
// RequireAuth rejects requests without an authenticated user with 401.
// Behind the fire plugin with the auth service enabled, the token is checked
// through that service so forged cookies are rejected. WithVerifiedToken
// makes the auth service mandatory:
//
//	r.Route("/notes", func(r firekit.Router) {
//	    r.Use(middlewares.RequireAuth(middlewares.WithVerifiedToken()))
//	    r.GET("/", h.list)
//	})
package middlewares
