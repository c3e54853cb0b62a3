package config

import (
	"fmt"
	"net/url"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) exceeds max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	if c.Wizard.SessionTTL <= 0 {
		return fmt.Errorf("wizard.session_ttl must be positive (got %v)", c.Wizard.SessionTTL)
	}
	if c.Wizard.SweepInterval <= 0 {
		return fmt.Errorf("wizard.sweep_interval must be positive (got %v)", c.Wizard.SweepInterval)
	}
	if c.Wizard.MaxPerPrincipal < 1 {
		return fmt.Errorf("wizard.max_per_principal must be at least 1 (got %d)", c.Wizard.MaxPerPrincipal)
	}

	u, err := url.Parse(c.FileStore.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("filestore.base_url must be an absolute URL (got %q)", c.FileStore.BaseURL)
	}
	if c.FileStore.MaxFileSizeMB < 1 {
		return fmt.Errorf("filestore.max_file_size_mb must be at least 1 (got %d)", c.FileStore.MaxFileSizeMB)
	}

	return nil
}
