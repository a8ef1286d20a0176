package internal

// Handler declares routes on a router.
//
// Example:
//
//	type NotesHandler struct{}
//
//	func (h *NotesHandler) Routes(r firekit.Router) {
//	    r.GET("/notes/{id}", h.get)
//	    r.PUT("/notes/{id}", h.put, middlewares.RequireAuth())
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error hands it to the app's error handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
//
// Example:
//
//	func Audit(next firekit.HandlerFunc) firekit.HandlerFunc {
//	    return func(c firekit.Context) error {
//	        c.LogInfo("audit", "uid", c.AuthUser().UID)
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
