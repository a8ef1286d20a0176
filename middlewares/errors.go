package middlewares

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/firekit/firekit/internal"
)

// PanicError represents a recovered panic.
type PanicError struct {
	Value any    // The panic value
	Stack []byte // Stack trace (nil if disabled)
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// HTTPError converts the panic into a generic 500 for the error handler.
// The panic value is kept as the cause and never rendered.
func (e *PanicError) HTTPError(requestID string) *internal.HTTPError {
	return internal.NewHTTPError(http.StatusInternalServerError, "",
		internal.WithError(e),
		internal.WithRequestID(requestID),
	)
}

// IsPanicError returns true if the error is a PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

var errNoNamespace = errors.New("middlewares: no fire namespace with the auth service, is the fire plugin before RequireAuth?")
