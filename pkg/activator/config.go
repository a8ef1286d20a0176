package activator

import (
	"context"
	"errors"
	"fmt"
)

// Side identifies where a namespace is being activated.
type Side int

const (
	// SideServer is the request-serving process.
	SideServer Side = iota
	// SideClient is a client process (CLI, worker or embedded consumer).
	SideClient
)

func (s Side) String() string {
	switch s {
	case SideServer:
		return "server"
	case SideClient:
		return "client"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// Fixed names used when injecting into the host context.
const (
	NamespaceKey = "fire"
	ModuleKey    = "fireModule"
)

// InjectFunc registers a value into the host context under a fixed name.
type InjectFunc func(name string, value any)

// AppFactory creates the module handle and the session for one context.
type AppFactory[M, S any] func(ctx context.Context) (M, S, error)

// ServiceFactory initializes a single service against an initialized session.
type ServiceFactory[M, S any] func(ctx context.Context, sess S, mod M, inject InjectFunc) (any, error)

// ServiceConfig enables one service.
type ServiceConfig struct {
	ID         string `yaml:"id"`
	ClientOnly bool   `yaml:"client_only"`
}

// appliesTo reports whether the service is initialized on the given side.
// The client side initializes every enabled service.
func (s ServiceConfig) appliesTo(side Side) bool {
	return side == SideClient || !s.ClientOnly
}

// Config selects the services and the activation mode.
type Config struct {
	Services     []ServiceConfig `yaml:"services"`
	Lazy         bool            `yaml:"lazy"`
	InjectModule bool            `yaml:"inject_module"`
}

// IDs returns the enabled service identifiers in configuration order.
func (c Config) IDs() []string {
	ids := make([]string, 0, len(c.Services))
	for _, s := range c.Services {
		ids = append(ids, s.ID)
	}
	return ids
}

// Validate checks identifiers for emptiness and duplicates.
// Registry membership is checked by New.
func (c Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Services))
	for i, s := range c.Services {
		if s.ID == "" {
			return errors.Join(ErrConfiguration, fmt.Errorf("service #%d has an empty id", i))
		}
		if _, ok := seen[s.ID]; ok {
			return errors.Join(ErrConfiguration, fmt.Errorf("%w: %q", ErrDuplicateService, s.ID))
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}
