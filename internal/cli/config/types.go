// Package config provides configuration management for the funnelboard CLI.
//
// Configuration is layered: built-in defaults, then funnelboard.yaml, then
// FUNNELBOARD_* environment variables, then explicit CLI flags.
package config

import (
	"github.com/meridian-data/funnelboard/pkg/core"
)

// Config holds all CLI configuration options.
type Config struct {
	Source       core.SourceConfig `koanf:"source"`
	Table        string            `koanf:"table"`
	Port         int               `koanf:"port"`
	CacheTTLSecs int               `koanf:"cache_ttl"`
	Verbose      bool              `koanf:"verbose"`
	OutputFormat string            `koanf:"output"`
}

// Default configuration values.
const (
	DefaultTable     = "CHECKOUT_FUNNEL_V5"
	DefaultPort      = 8765
	DefaultCacheTTL  = 3600
	DefaultOutput    = "table"
	DefaultSourceType = "snowflake"
)
