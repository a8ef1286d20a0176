package middlewares

import (
	"log/slog"
	"runtime"

	"github.com/firekit/firekit/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

type recoverConfig struct {
	stackSize    int
	disableStack bool
	asHTTPError  bool
}

// RecoverOption configures the recover middleware.
type RecoverOption func(*recoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *recoverConfig) {
		if size > 0 {
			cfg.stackSize = size
		}
	}
}

// WithRecoverDisablePrintStack disables stack capture.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.disableStack = true
	}
}

// WithRecoverHTTPError returns the panic as a 500 HTTPError carrying the
// request id, instead of the bare PanicError.
func WithRecoverHTTPError() RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.asHTTPError = true
	}
}

// Recover returns middleware that recovers from panics.
// It logs the panic and returns a PanicError to the app's error handler.
// Place it first so panics in fire activation are caught too.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &recoverConfig{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				pe := &PanicError{Value: r}
				attrs := []any{slog.Any("panic", r)}
				if !cfg.disableStack {
					stack := make([]byte, cfg.stackSize)
					pe.Stack = stack[:runtime.Stack(stack, false)]
					attrs = append(attrs, slog.String("stack", string(pe.Stack)))
				}
				c.LogError("panic recovered", attrs...)

				if cfg.asHTTPError {
					err = pe.HTTPError(GetRequestID(c))
					return
				}
				err = pe
			}()

			return next(c)
		}
	}
}
