package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store the logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// Package-level koanf instance and config file tracking.
var (
	k              = koanf.New(".")
	configFileUsed string
)

// findConfigFile finds the config file to use.
// Priority: explicit path > funnelboard.yaml > funnelboard.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"funnelboard.yaml", "funnelboard.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for a fresh load
	k = koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"source.type": DefaultSourceType,
		"table":       DefaultTable,
		"port":        DefaultPort,
		"cache_ttl":   DefaultCacheTTL,
		"verbose":     false,
		"output":      DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (FUNNELBOARD_ prefix).
	// A double underscore nests: FUNNELBOARD_SOURCE__ACCOUNT -> source.account.
	if err := k.Load(env.Provider("FUNNELBOARD_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "FUNNELBOARD_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to dotted config keys: --source-type
			// sets source.type, --cache-ttl sets cache_ttl.
			switch f.Name {
			case "cache-ttl":
				return "cache_ttl", posflag.FlagVal(flags, f)
			case "source-type":
				return "source.type", posflag.FlagVal(flags, f)
			case "database":
				return "source.path", posflag.FlagVal(flags, f)
			}
			return f.Name, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Expand ${VAR} references in credential fields so secrets can live
	// in the environment rather than in funnelboard.yaml.
	cfg.Source.Account = expandEnvVars(cfg.Source.Account)
	cfg.Source.User = expandEnvVars(cfg.Source.User)
	cfg.Source.Role = expandEnvVars(cfg.Source.Role)
	cfg.Source.Warehouse = expandEnvVars(cfg.Source.Warehouse)
	cfg.Source.Database = expandEnvVars(cfg.Source.Database)
	cfg.Source.Schema = expandEnvVars(cfg.Source.Schema)
	cfg.Source.PrivateKey = expandEnvVars(cfg.Source.PrivateKey)
	cfg.Source.PrivateKeyPath = expandEnvVars(cfg.Source.PrivateKeyPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// ConfigKey returns the context key used for storing the loaded config.
// This allows the commands package to retrieve the config from context
// without creating an import cycle with the cli package.
func ConfigKey() interface{} {
	return configKey{}
}

// FromContext retrieves the loaded config from the command context.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		Table:        DefaultTable,
		Port:         DefaultPort,
		CacheTTLSecs: DefaultCacheTTL,
		OutputFormat: DefaultOutput,
	}
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment
// variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}
