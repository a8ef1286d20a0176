package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/firekit/firekit/pkg/activator"
	"github.com/firekit/firekit/pkg/backend"
	"github.com/firekit/firekit/pkg/db"
	"github.com/firekit/firekit/pkg/logger"
	"github.com/firekit/firekit/pkg/plugins"
	"github.com/firekit/firekit/pkg/redis"
	"github.com/firekit/firekit/pkg/storage"
)

var (
	ErrRead    = errors.New("config: failed to read file")
	ErrParse   = errors.New("config: failed to parse")
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config is the root of the configuration file.
type Config struct {
	Server   Server              `yaml:"server"`
	Log      logger.Config       `yaml:"log"`
	Sentry   logger.SentryConfig `yaml:"sentry"`
	Fire     activator.Config    `yaml:"fire"`
	App      backend.AppConfig   `yaml:"app"`
	Database db.Config           `yaml:"database"`
	Redis    redis.Config        `yaml:"redis"`
	Storage  storage.Config      `yaml:"storage"`
	Cookie   Cookie              `yaml:"cookie"`
	Plugins  Plugins             `yaml:"plugins"`
}

// Server configures the HTTP host.
type Server struct {
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// Static marks a static export render; auth cookies are ignored.
	Static bool `yaml:"static"`
}

// Cookie configures the auth cookie.
type Cookie struct {
	Name   string `yaml:"name"`
	Domain string `yaml:"domain"`
	Secure bool   `yaml:"secure"`
}

// Plugins declares the plugin order of the host.
type Plugins struct {
	// Order lists plugin descriptors; firekit/main must be among them.
	Order []plugins.Ref `yaml:"order"`
	// MoveAfterFirekit names plugins to run right after firekit/main.
	MoveAfterFirekit []string `yaml:"move_after_firekit"`
}

// Backend returns the backend module configuration.
func (c *Config) Backend() backend.Config {
	return backend.Config{
		App:      c.App,
		Database: c.Database,
		Redis:    c.Redis,
		Storage:  c.Storage,
	}
}

// Load reads, expands, parses and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}
	return Parse(data)
}

// Parse is Load for in-memory content.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewBufferString(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrParse, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Fire.Services == nil {
		c.Fire.Services = []activator.ServiceConfig{{ID: "auth"}}
	}
	if len(c.Plugins.Order) == 0 {
		c.Plugins.Order = []plugins.Ref{{Src: plugins.OwnPlugin}}
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	if err := c.App.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Fire.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must not be negative"))
	}
	switch c.Storage.Driver {
	case "", storage.DriverS3, storage.DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}
	if plugins.Index(c.Plugins.Order, plugins.OwnPlugin) < 0 {
		errs = append(errs, fmt.Errorf("plugins.order must contain %s", plugins.OwnPlugin))
	}
	for _, name := range c.Plugins.MoveAfterFirekit {
		if plugins.Index(c.Plugins.Order, name) < 0 {
			errs = append(errs, fmt.Errorf("plugins.move_after_firekit: %w: %q", plugins.ErrPluginNotFound, name))
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalid}, errs...)...)
	}
	return nil
}
