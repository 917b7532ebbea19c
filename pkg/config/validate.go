// Package config loads and validates service configuration.
package config

import (
	"fmt"
	"strings"
)

// ValidateCore ensures critical configuration is present.
func (c *Config) ValidateCore() error {
	var missing []string

	switch c.Store.Driver {
	case StoreSQL:
		if strings.TrimSpace(c.Database.URL) == "" {
			missing = append(missing, "DATABASE_URL")
		}
		// sqlite is for tests and local development; see DatabaseConfig.
		if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
			missing = append(missing, "DB_DRIVER (postgres|sqlite)")
		}
	case StoreMemory:
	default:
		missing = append(missing, "STORE_DRIVER (sql|memory)")
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		missing = append(missing, "SERVER_PORT")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}
