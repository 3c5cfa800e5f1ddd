// Package warehouse provides the data source seam for funnelboard: an
// adapter interface over database/sql with concrete Snowflake and DuckDB
// implementations selected by configuration.
package warehouse

import (
	"context"
	"fmt"

	"github.com/meridian-data/funnelboard/pkg/core"
)

// Adapter is the contract every warehouse source implements. Adapters are
// long-lived: one connection is opened at startup and reused across renders.
type Adapter interface {
	// Connect establishes the session using the provided config.
	Connect(ctx context.Context, cfg core.SourceConfig) error

	// Close closes the session and releases resources.
	Close() error

	// Ping verifies connectivity on the open session.
	Ping(ctx context.Context) error

	// Exec executes a statement that returns no rows (used by the local
	// seeding path only; the dashboard itself is read-only).
	Exec(ctx context.Context, sqlText string) error

	// Query executes a statement and materializes the full result.
	Query(ctx context.Context, sqlText string) (core.ResultSet, error)
}

// Open constructs the adapter registered for cfg.Type and connects it.
func Open(ctx context.Context, cfg core.SourceConfig) (Adapter, error) {
	a, err := New(cfg.Type)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to connect to %s source: %w", cfg.Type, err)
	}
	return a, nil
}
