package config

import (
	"fmt"
	"os"

	"github.com/meridian-data/funnelboard/internal/catalog"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Source.Type {
	case "snowflake":
		if c.Source.Account == "" {
			return fmt.Errorf("source.account is required for snowflake\nHint: set it in funnelboard.yaml or via FUNNELBOARD_SOURCE__ACCOUNT")
		}
		if c.Source.User == "" {
			return fmt.Errorf("source.user is required for snowflake\nHint: set it in funnelboard.yaml or via FUNNELBOARD_SOURCE__USER")
		}
	case "duckdb":
		// An empty path means in-memory, which is fine.
	case "":
		return fmt.Errorf("source.type is required (snowflake or duckdb)")
	default:
		return fmt.Errorf("unsupported source.type %q (snowflake or duckdb)", c.Source.Type)
	}

	if c.CacheTTLSecs < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %d", c.CacheTTLSecs)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// ValidateKeyPair checks that a configured private key file exists.
func (c *Config) ValidateKeyPair() error {
	if c.Source.PrivateKeyPath == "" {
		return nil
	}
	if _, err := os.Stat(c.Source.PrivateKeyPath); os.IsNotExist(err) {
		return fmt.Errorf("private key file does not exist: %s", c.Source.PrivateKeyPath)
	}
	return nil
}

// Dialect maps the source type to the catalog's SQL dialect.
func (c *Config) Dialect() catalog.Dialect {
	switch c.Source.Type {
	case "duckdb":
		return catalog.DialectDuckDB
	default:
		return catalog.DialectSnowflake
	}
}
