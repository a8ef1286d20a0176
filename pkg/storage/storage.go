package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Storage is the file storage contract used by the storage service.
type Storage interface {
	Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error)
	// Get returns the file body; the caller closes it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]FileInfo, error)
	URL(ctx context.Context, key string, opts ...URLOption) (string, error)
}

// Storage drivers.
const (
	DriverS3     = "s3"
	DriverMemory = "memory"
)

// Config holds S3-compatible storage settings.
type Config struct {
	// Driver is s3 (default) or memory.
	Driver    string `yaml:"driver"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	// Endpoint overrides the AWS endpoint, e.g. for MinIO.
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	// PublicURL is a CDN prefix for public files.
	PublicURL  string `yaml:"public_url"`
	DefaultACL ACL    `yaml:"default_acl"`
	PathStyle  bool   `yaml:"path_style"`
	// MaxUploadSize rejects larger uploads; 0 means DefaultMaxUploadSize.
	MaxUploadSize int64 `yaml:"max_upload_size"`
}

// Enabled reports whether storage is configured.
func (c Config) Enabled() bool {
	return c.Driver == DriverMemory || c.Bucket != ""
}

// Open returns the Storage selected by the driver.
func Open(cfg Config) (Storage, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(cfg.PublicURL), nil
	case "", DriverS3:
		return New(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}

// FileInfo describes a stored file.
type FileInfo struct {
	Key          string    `json:"key"`
	ContentType  string    `json:"content_type,omitempty"`
	ACL          ACL       `json:"acl,omitempty"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified,omitzero"`
}

// ACL is an object access level.
type ACL string

const (
	ACLPrivate    ACL = "private"
	ACLPublicRead ACL = "public-read"
)

const (
	DefaultRegion        = "us-east-1"
	DefaultMaxUploadSize = 50 << 20
	DefaultURLExpiry     = 15 * time.Minute
)

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.DefaultACL == "" {
		c.DefaultACL = ACLPrivate
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = DefaultMaxUploadSize
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}
