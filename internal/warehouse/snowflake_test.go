package warehouse

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-data/funnelboard/pkg/core"
)

func testKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func TestBuildDSNKeyPair(t *testing.T) {
	cfg := core.SourceConfig{
		Type:       "snowflake",
		Account:    "xy12345",
		User:       "DASHBOARD_SVC",
		Warehouse:  "SHARED",
		Database:   "PROD__US",
		Schema:     "DBT_ANALYTICS",
		PrivateKey: testKeyPEM(t),
	}

	dsn, err := buildDSN(cfg)
	require.NoError(t, err)
	assert.Contains(t, dsn, "xy12345")
	assert.Contains(t, dsn, "DASHBOARD_SVC")
	assert.Contains(t, dsn, "authenticator=snowflake_jwt")
}

func TestBuildDSNExternalBrowser(t *testing.T) {
	cfg := core.SourceConfig{
		Type:      "snowflake",
		Account:   "xy12345",
		User:      "analyst",
		Warehouse: "SHARED",
		Database:  "PROD__US",
		Schema:    "DBT_ANALYTICS",
	}

	dsn, err := buildDSN(cfg)
	require.NoError(t, err)
	assert.Contains(t, dsn, "authenticator=externalbrowser")
}

func TestLoadPrivateKeyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sf.p8")
	require.NoError(t, os.WriteFile(path, []byte(testKeyPEM(t)), 0o600))

	key, err := loadPrivateKey(core.SourceConfig{PrivateKeyPath: path})
	require.NoError(t, err)
	assert.NotNil(t, key)
}

func TestLoadPrivateKeyErrors(t *testing.T) {
	t.Run("not PEM", func(t *testing.T) {
		_, err := loadPrivateKey(core.SourceConfig{PrivateKey: "not a key"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not valid PEM")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadPrivateKey(core.SourceConfig{PrivateKeyPath: "/nonexistent/sf.p8"})
		require.Error(t, err)
	})

	t.Run("PKCS#1 rejected", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		pkcs1 := pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		})
		_, err = loadPrivateKey(core.SourceConfig{PrivateKey: string(pkcs1)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PKCS#8")
	})
}
