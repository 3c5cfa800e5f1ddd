package core

// SourceConfig holds the connection settings for a warehouse source.
// Credential selection follows the configured fields: a snowflake source
// with a private key uses key-pair auth, one without falls back to
// interactive external-browser auth.
type SourceConfig struct {
	// Type selects the adapter: "snowflake" or "duckdb".
	Type string `koanf:"type"`

	// Snowflake settings.
	Account        string `koanf:"account"`
	User           string `koanf:"user"`
	Role           string `koanf:"role"`
	Warehouse      string `koanf:"warehouse"`
	Database       string `koanf:"database"`
	Schema         string `koanf:"schema"`
	PrivateKey     string `koanf:"private_key"`      // PEM-encoded PKCS#8 key, inline
	PrivateKeyPath string `koanf:"private_key_path"` // path to a PEM file; ignored if PrivateKey is set

	// Path is the database file for file-based sources (duckdb).
	// Use ":memory:" for an in-memory database.
	Path string `koanf:"path"`

	// Options contains additional driver-specific options.
	Options map[string]string `koanf:"options"`
}

// HasKeyPair reports whether key-pair credentials are configured.
func (c SourceConfig) HasKeyPair() bool {
	return c.PrivateKey != "" || c.PrivateKeyPath != ""
}
