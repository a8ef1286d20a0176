package backend

import "errors"

var (
	ErrNotConfigured = errors.New("backend: dependency not configured")
	ErrOpen          = errors.New("backend: failed to open module")
	ErrInvalidConfig = errors.New("backend: invalid app configuration")
)
