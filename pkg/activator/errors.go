package activator

import "errors"

var (
	// ErrConfiguration is returned for an invalid activator setup.
	ErrConfiguration = errors.New("activator: invalid configuration")

	// ErrUnknownService is returned when the config names a service missing from the registry.
	ErrUnknownService = errors.New("activator: unknown service")

	// ErrDuplicateService is returned when a service id is registered or configured twice.
	ErrDuplicateService = errors.New("activator: duplicate service")

	// ErrInitialization wraps failures of the app factory or a service factory.
	ErrInitialization = errors.New("activator: initialization failed")

	// ErrInitializerPanic is wrapped into ErrInitialization when a factory panics.
	ErrInitializerPanic = errors.New("activator: initializer panicked")

	// ErrServiceNotEnabled is returned when accessing a service absent from the config.
	ErrServiceNotEnabled = errors.New("activator: service not enabled")

	// ErrWrongSide is returned when accessing a client-only service on the server side.
	ErrWrongSide = errors.New("activator: service not available on this side")

	// ErrServiceType is returned by Get when the handle has an unexpected type.
	ErrServiceType = errors.New("activator: unexpected service type")
)
