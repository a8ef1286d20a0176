// Package authcookie extracts the auth user and raw ID token from a request's
// auth cookie.
//
// The token payload is decoded without verifying the signature. The result is
// a projection of the identity claims, suitable for rendering and routing
// decisions; authorization must use a verified token (see the auth service).
//
//	res, err := authcookie.Parse(r)
//	if err != nil {
//		// malformed token
//	}
//	if res.AuthUser != nil {
//		log.Println(res.AuthUser.UID)
//	}
package authcookie
