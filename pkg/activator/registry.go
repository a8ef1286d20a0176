package activator

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Registry maps service identifiers to their factories.
// It is built once at startup and shared by every activation.
type Registry[M, S any] struct {
	factories map[string]ServiceFactory[M, S]
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry[M, S any]() *Registry[M, S] {
	return &Registry[M, S]{factories: make(map[string]ServiceFactory[M, S])}
}

// Register adds a factory under id.
func (r *Registry[M, S]) Register(id string, f ServiceFactory[M, S]) error {
	if id == "" || f == nil {
		return errors.Join(ErrConfiguration, errors.New("registry: id and factory are required"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateService, id)
	}
	r.factories[id] = f
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry[M, S]) MustRegister(id string, f ServiceFactory[M, S]) {
	if err := r.Register(id, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under id.
func (r *Registry[M, S]) Lookup(id string) (ServiceFactory[M, S], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[id]
	return f, ok
}

// IDs returns the registered identifiers, sorted.
func (r *Registry[M, S]) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
