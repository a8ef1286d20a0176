package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/firekit/firekit/pkg/authcookie"
	"github.com/firekit/firekit/pkg/backend"
	"github.com/firekit/firekit/pkg/cookie"
)

// maxJSONBody caps BindJSON request bodies.
const maxJSONBody = 1 << 20

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// SetContext replaces the request context.
	// Middleware use it to pass values built with typed context helpers.
	SetContext(ctx context.Context)

	// Param returns the URL parameter value by name.
	Param(name string) string

	// Query returns the query parameter value by name.
	Query(name string) string

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Redirect redirects to the given URL with the given status code.
	Redirect(code int, url string) error

	// Error creates an HTTPError without writing a response.
	// Return it from the handler to trigger the error handler.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// BindJSON decodes the JSON request body into v.
	// Unknown fields are rejected.
	BindJSON(v any) error

	// Written returns true if a response has already been written.
	Written() bool

	// Logger returns the app logger.
	Logger() *slog.Logger

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key any, value any)

	// Get retrieves a value from the request context.
	Get(key any) any

	// Cookie returns a plain cookie value.
	Cookie(name string) (string, error)

	// SetCookie sets a plain cookie.
	SetCookie(name, value string, maxAge int)

	// DeleteCookie removes a cookie.
	DeleteCookie(name string)

	// SetAuthToken stores an ID token in the auth cookie.
	SetAuthToken(token string, maxAge int)

	// ClearAuthToken removes the auth cookie.
	ClearAuthToken()

	// AuthUser returns the user decoded from the auth cookie.
	// Returns nil for anonymous requests or before the fire plugin ran.
	AuthUser() *authcookie.AuthUser

	// IDToken returns the raw token from the auth cookie.
	IDToken() string

	// Injected returns a value the fire activation registered for this
	// request under name ("fire", "fireModule", "fireAuthUser").
	Injected(name string) (any, bool)
}

// requestContext implements the Context interface.
type requestContext struct {
	response      *ResponseWriter
	request       *http.Request
	logger        *slog.Logger
	cookieManager *cookie.Manager
}

// newContext creates a new context with the response wrapper.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	return &requestContext{
		request:       r,
		response:      NewResponseWriter(w),
		logger:        app.logger,
		cookieManager: app.cookieManager,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) BindJSON(v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(c.response, c.request.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrBadRequest("invalid JSON body", WithError(fmt.Errorf("bind json: %w", err)))
	}
	return nil
}

func (c *requestContext) Written() bool {
	return c.response.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	c.SetContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.cookieManager.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.cookieManager.Set(c.response, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) {
	c.cookieManager.Delete(c.response, name)
}

func (c *requestContext) SetAuthToken(token string, maxAge int) {
	c.cookieManager.SetAuthToken(c.response, token, maxAge)
}

func (c *requestContext) ClearAuthToken() {
	c.cookieManager.ClearAuthToken(c.response)
}

func (c *requestContext) AuthUser() *authcookie.AuthUser {
	res, _ := backend.AuthFromContext(c.request.Context())
	return res.AuthUser
}

func (c *requestContext) IDToken() string {
	res, _ := backend.AuthFromContext(c.request.Context())
	return res.IDToken
}

func (c *requestContext) Injected(name string) (any, bool) {
	inj, ok := c.request.Context().Value(injectionsKey{}).(*injections)
	if !ok {
		return nil, false
	}
	return inj.get(name)
}
