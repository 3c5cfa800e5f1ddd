package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/meridian-data/funnelboard/pkg/core"
)

func init() {
	Register("duckdb", func() Adapter { return NewDuckDBAdapter(nil) })
}

// DuckDBAdapter implements Adapter for a local DuckDB file. It exists so
// the whole pipeline can run (and be seeded) without a Snowflake account.
type DuckDBAdapter struct {
	base
	cfg core.SourceConfig
}

// NewDuckDBAdapter creates a disconnected DuckDB adapter.
func NewDuckDBAdapter(logger *slog.Logger) *DuckDBAdapter {
	a := &DuckDBAdapter{}
	a.setDB(nil, logger)
	return a
}

// Connect opens the database at cfg.Path (":memory:" when empty).
func (a *DuckDBAdapter) Connect(ctx context.Context, cfg core.SourceConfig) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.setDB(db, a.logger)
	a.cfg = cfg
	a.logger.Debug("duckdb opened", "path", path)
	return nil
}
