package services

import "errors"

var (
	ErrUnauthenticated  = errors.New("services: authentication required")
	ErrVerifierMissing  = errors.New("services: no token verifier configured")
	ErrInvalidToken     = errors.New("services: invalid id token")
	ErrInvalidPath      = errors.New("services: invalid collection or document id")
	ErrDocumentNotFound = errors.New("services: document not found")
	ErrKeyNotFound      = errors.New("services: key not found")
	ErrInvalidEventName = errors.New("services: invalid event name")
	ErrEncode           = errors.New("services: failed to encode value")
	ErrDecode           = errors.New("services: failed to decode value")
)
