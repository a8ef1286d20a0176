package middlewares_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/firekit/firekit/internal"
	"github.com/firekit/firekit/pkg/authcookie"
	"github.com/firekit/firekit/pkg/cookie"
	"github.com/firekit/firekit/pkg/logger"
)

// testContext is a minimal internal.Context for driving middleware directly.
type testContext struct {
	response http.ResponseWriter
	request  *http.Request
	authUser *authcookie.AuthUser
	injected map[string]any
	logger   *slog.Logger
	idToken  string
	written  bool
}

var _ internal.Context = (*testContext)(nil)

func newTestContext(w http.ResponseWriter, r *http.Request) *testContext {
	return &testContext{
		response: w,
		request:  r,
		injected: make(map[string]any),
		logger:   logger.NewNope(),
	}
}

func (c *testContext) Request() *http.Request         { return c.request }
func (c *testContext) Response() http.ResponseWriter  { return c.response }
func (c *testContext) Context() context.Context       { return c.request.Context() }
func (c *testContext) SetContext(ctx context.Context) { c.request = c.request.WithContext(ctx) }
func (c *testContext) Param(string) string            { return "" }
func (c *testContext) Query(name string) string       { return c.request.URL.Query().Get(name) }
func (c *testContext) Header(name string) string      { return c.request.Header.Get(name) }
func (c *testContext) SetHeader(name, value string)   { c.response.Header().Set(name, value) }

func (c *testContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *testContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *testContext) Err() error                  { return c.request.Context().Err() }
func (c *testContext) Value(key any) any           { return c.request.Context().Value(key) }

func (c *testContext) JSON(code int, v any) error {
	c.written = true
	c.response.Header().Set("Content-Type", "application/json")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *testContext) String(code int, s string) error {
	c.written = true
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *testContext) NoContent(code int) error {
	c.written = true
	c.response.WriteHeader(code)
	return nil
}

func (c *testContext) Redirect(code int, url string) error {
	c.written = true
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *testContext) Error(code int, message string, opts ...internal.HTTPErrorOption) *internal.HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func (c *testContext) BindJSON(v any) error { return json.NewDecoder(c.request.Body).Decode(v) }
func (c *testContext) Written() bool        { return c.written }
func (c *testContext) Logger() *slog.Logger { return c.logger }

func (c *testContext) LogDebug(msg string, attrs ...any) { c.logger.Debug(msg, attrs...) }
func (c *testContext) LogInfo(msg string, attrs ...any)  { c.logger.Info(msg, attrs...) }
func (c *testContext) LogWarn(msg string, attrs ...any)  { c.logger.Warn(msg, attrs...) }
func (c *testContext) LogError(msg string, attrs ...any) { c.logger.Error(msg, attrs...) }

func (c *testContext) Set(key, value any) {
	c.SetContext(context.WithValue(c.request.Context(), key, value))
}
func (c *testContext) Get(key any) any { return c.request.Context().Value(key) }

func (c *testContext) Cookie(name string) (string, error) {
	ck, err := c.request.Cookie(name)
	if err != nil {
		return "", err
	}
	return ck.Value, nil
}
func (c *testContext) SetCookie(name, value string, maxAge int) {
	http.SetCookie(c.response, &http.Cookie{Name: name, Value: value, MaxAge: maxAge})
}

func (c *testContext) DeleteCookie(name string) { c.SetCookie(name, "", -1) }

func (c *testContext) SetAuthToken(token string, maxAge int) {
	c.SetCookie(cookie.AuthTokenName, token, maxAge)
}

func (c *testContext) ClearAuthToken() { c.DeleteCookie(cookie.AuthTokenName) }

func (c *testContext) AuthUser() *authcookie.AuthUser { return c.authUser }
func (c *testContext) IDToken() string                { return c.idToken }

func (c *testContext) Injected(name string) (any, bool) {
	v, ok := c.injected[name]
	return v, ok
}
