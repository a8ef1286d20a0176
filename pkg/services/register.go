package services

import (
	"context"
	"errors"

	"github.com/firekit/firekit/pkg/activator"
	"github.com/firekit/firekit/pkg/backend"
)

// Service identifiers.
const (
	IDAuth      = "auth"
	IDDatabase  = "database"
	IDStorage   = "storage"
	IDKV        = "kv"
	IDAnalytics = "analytics"
)

type (
	// Registry is the activator registry specialized to the backend.
	Registry = activator.Registry[*backend.Module, *backend.Session]
	// Namespace is the per-context namespace specialized to the backend.
	Namespace = activator.Namespace[*backend.Module, *backend.Session]
	// Factory is a service factory specialized to the backend.
	Factory = activator.ServiceFactory[*backend.Module, *backend.Session]
)

// NewRegistry returns a registry with every built-in service registered.
func NewRegistry() (*Registry, error) {
	reg := activator.NewRegistry[*backend.Module, *backend.Session]()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Register adds the built-in services to reg.
func Register(reg *Registry) error {
	return errors.Join(
		reg.Register(IDAuth, newAuth),
		reg.Register(IDDatabase, newDatabase),
		reg.Register(IDStorage, newStorage),
		reg.Register(IDKV, newKV),
		reg.Register(IDAnalytics, newAnalytics),
	)
}

// Defaults enables every built-in service; analytics is client only.
func Defaults() []activator.ServiceConfig {
	return []activator.ServiceConfig{
		{ID: IDAuth},
		{ID: IDDatabase},
		{ID: IDStorage},
		{ID: IDKV},
		{ID: IDAnalytics, ClientOnly: true},
	}
}

// GetAuth resolves the auth service.
func GetAuth(ctx context.Context, ns *Namespace) (*Auth, error) {
	return activator.Get[*Auth](ctx, ns, IDAuth)
}

// GetDatabase resolves the database service.
func GetDatabase(ctx context.Context, ns *Namespace) (*Database, error) {
	return activator.Get[*Database](ctx, ns, IDDatabase)
}

// GetStorage resolves the storage service.
func GetStorage(ctx context.Context, ns *Namespace) (*Storage, error) {
	return activator.Get[*Storage](ctx, ns, IDStorage)
}

// GetKV resolves the kv service.
func GetKV(ctx context.Context, ns *Namespace) (*KV, error) {
	return activator.Get[*KV](ctx, ns, IDKV)
}

// GetAnalytics resolves the analytics service.
func GetAnalytics(ctx context.Context, ns *Namespace) (*Analytics, error) {
	return activator.Get[*Analytics](ctx, ns, IDAnalytics)
}
