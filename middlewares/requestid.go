package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/firekit/firekit/internal"
	"github.com/firekit/firekit/pkg/logger"
)

// requestIDKey is the context key for storing the request ID.
type requestIDKey struct{}

// maxRequestIDLength bounds IDs accepted from upstream headers.
const maxRequestIDLength = 128

// DefaultRequestIDHeaders are the headers checked (in order) for an existing request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

type requestIDConfig struct {
	generator      func() string
	responseHeader string
	headers        []string
}

// RequestIDOption configures the request ID middleware.
type RequestIDOption func(*requestIDConfig)

// WithRequestIDHeaders sets the headers to check for existing request IDs.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.headers = headers
	}
}

// WithRequestIDGenerator sets a custom ID generator. Defaults to random UUIDs.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generator = gen
		}
	}
}

// WithRequestIDResponseHeader sets the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if header != "" {
			cfg.responseHeader = header
		}
	}
}

// RequestID returns middleware that assigns a request ID to each request.
// A well-formed upstream ID is reused; otherwise a new one is generated.
// The ID is stored in the context and echoed in a response header.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &requestIDConfig{
		headers:        DefaultRequestIDHeaders,
		generator:      uuid.NewString,
		responseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			var reqID string
			for _, header := range cfg.headers {
				if v := c.Header(header); validRequestID(v) {
					reqID = v
					break
				}
			}
			if reqID == "" {
				reqID = cfg.generator()
			}

			c.Set(requestIDKey{}, reqID)
			c.SetHeader(cfg.responseHeader, reqID)

			return next(c)
		}
	}
}

// validRequestID accepts non-empty printable ASCII up to maxRequestIDLength,
// keeping forged header values out of logs.
func validRequestID(v string) bool {
	if v == "" || len(v) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(v); i++ {
		if v[i] < 0x21 || v[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID returns the request ID stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor returns a ContextExtractor adding "request_id" to log records.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := GetRequestID(ctx); v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
