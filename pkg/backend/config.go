package backend

import (
	"fmt"

	"github.com/firekit/firekit/pkg/db"
	"github.com/firekit/firekit/pkg/redis"
	"github.com/firekit/firekit/pkg/storage"
)

// AppConfig identifies the project and how its tokens are verified.
type AppConfig struct {
	ProjectID string `yaml:"project_id"`
	// JWTSecret verifies HS256 ID tokens locally.
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	// SupabaseURL and SupabaseKey enable remote token verification.
	SupabaseURL string `yaml:"supabase_url"`
	SupabaseKey string `yaml:"supabase_key"`
}

// Validate checks the app configuration.
func (c AppConfig) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("%w: project_id is required", ErrInvalidConfig)
	}
	if (c.SupabaseURL == "") != (c.SupabaseKey == "") {
		return fmt.Errorf("%w: supabase_url and supabase_key must be set together", ErrInvalidConfig)
	}
	return nil
}

// SupabaseEnabled reports whether remote verification is configured.
func (c AppConfig) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// Config groups everything Open needs.
type Config struct {
	App      AppConfig
	Database db.Config
	Redis    redis.Config
	Storage  storage.Config
}
