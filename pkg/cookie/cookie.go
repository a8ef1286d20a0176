package cookie

import (
	"errors"
	"net/http"
	"strings"
)

// AuthTokenName is the cookie holding the raw ID token.
const AuthTokenName = "firekit_auth_access_token"

// ErrNotFound is returned when the cookie is absent.
var ErrNotFound = errors.New("cookie: not found")

// ParseHeader parses a Cookie header value into a map.
// Parts without "=" and other malformed pairs are skipped; for repeated
// names the first value wins.
func ParseHeader(header string) map[string]string {
	out := make(map[string]string)
	if header == "" {
		return out
	}

	// net/http reads a bare name as an empty cookie; drop such parts.
	parts := strings.Split(header, ";")
	kept := parts[:0]
	for _, p := range parts {
		if strings.Contains(p, "=") {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return out
	}

	r := http.Request{Header: http.Header{"Cookie": {strings.Join(kept, ";")}}}
	for _, c := range r.Cookies() {
		if _, ok := out[c.Name]; !ok {
			out[c.Name] = c.Value
		}
	}
	return out
}

// Manager writes cookies with shared attributes.
type Manager struct {
	domain   string
	path     string
	authName string
	sameSite http.SameSite
	secure   bool
	httpOnly bool
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a Manager. Defaults: path "/", HttpOnly, SameSite=Lax.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		authName: AuthTokenName,
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) {
		m.httpOnly = httpOnly
	}
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) {
		m.sameSite = ss
	}
}

// WithAuthTokenName overrides the auth token cookie name.
func WithAuthTokenName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.authName = name
		}
	}
}

// AuthTokenName returns the configured auth token cookie name.
func (m *Manager) AuthTokenName() string {
	return m.authName
}

// Get returns a cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set writes a cookie. maxAge follows http.Cookie semantics.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

// Delete expires a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// SetAuthToken stores the ID token in the auth cookie.
func (m *Manager) SetAuthToken(w http.ResponseWriter, token string, maxAge int) {
	m.Set(w, m.authName, token, maxAge)
}

// ClearAuthToken expires the auth cookie.
func (m *Manager) ClearAuthToken(w http.ResponseWriter) {
	m.Delete(w, m.authName)
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}
