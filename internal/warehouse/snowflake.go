package warehouse

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
	"time"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/meridian-data/funnelboard/pkg/core"
)

func init() {
	Register("snowflake", func() Adapter { return NewSnowflakeAdapter(nil) })
}

// connectTimeout bounds the initial ping. External-browser auth waits on a
// human, so this is generous.
const connectTimeout = 60 * time.Second

// SnowflakeAdapter implements Adapter for Snowflake. Credential selection
// follows the config: a configured private key means key-pair (JWT) auth;
// otherwise the driver opens the external-browser flow.
type SnowflakeAdapter struct {
	base
	cfg core.SourceConfig
}

// NewSnowflakeAdapter creates a disconnected Snowflake adapter.
func NewSnowflakeAdapter(logger *slog.Logger) *SnowflakeAdapter {
	a := &SnowflakeAdapter{}
	a.setDB(nil, logger)
	return a
}

// Connect builds the DSN from config and opens the session.
func (a *SnowflakeAdapter) Connect(ctx context.Context, cfg core.SourceConfig) error {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return err
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return fmt.Errorf("failed to open snowflake connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping snowflake: %w", err)
	}

	a.setDB(db, a.logger)
	a.cfg = cfg
	a.logger.Debug("snowflake session established",
		"account", cfg.Account, "warehouse", cfg.Warehouse,
		"database", cfg.Database, "schema", cfg.Schema)
	return nil
}

// buildDSN translates SourceConfig into a gosnowflake DSN.
func buildDSN(cfg core.SourceConfig) (string, error) {
	sfCfg := &sf.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Role:      cfg.Role,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
	}

	if cfg.HasKeyPair() {
		key, err := loadPrivateKey(cfg)
		if err != nil {
			return "", err
		}
		sfCfg.Authenticator = sf.AuthTypeJwt
		sfCfg.PrivateKey = key
	} else {
		sfCfg.Authenticator = sf.AuthTypeExternalBrowser
	}

	dsn, err := sf.DSN(sfCfg)
	if err != nil {
		return "", fmt.Errorf("failed to build snowflake DSN: %w", err)
	}
	return dsn, nil
}

// loadPrivateKey parses the configured PEM key (inline takes precedence
// over a file path) into the RSA form the driver expects.
func loadPrivateKey(cfg core.SourceConfig) (*rsa.PrivateKey, error) {
	pemBytes := []byte(cfg.PrivateKey)
	if len(pemBytes) == 0 {
		b, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key file: %w", err)
		}
		pemBytes = b
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("private key is not valid PEM")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key (PKCS#8 expected): %w", err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is %T, want RSA", parsed)
	}
	return key, nil
}
