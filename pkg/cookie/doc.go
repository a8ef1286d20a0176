// Package cookie reads and writes the cookies firekit relies on.
//
// ParseHeader turns a raw Cookie header into a name/value map, tolerating
// malformed pairs the way browsers do. Manager writes cookies with consistent
// attributes, and SetAuthToken/ClearAuthToken manage the auth token cookie
// that the fire lifecycle hook reads on every request:
//
//	m := cookie.New(cookie.WithSecure(true))
//	m.SetAuthToken(w, idToken, 3600)
//	...
//	m.ClearAuthToken(w)
package cookie
