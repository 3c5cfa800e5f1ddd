package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/meridian-data/funnelboard/pkg/core"
)

// base provides common database/sql functionality for adapters. Concrete
// adapters embed it to get standard Close, Ping, Exec, and Query behavior;
// Connect stays adapter-specific.
type base struct {
	db     *sql.DB
	logger *slog.Logger
}

func (b *base) setDB(db *sql.DB, logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b.db = db
	b.logger = logger
}

// Close closes the underlying connection.
func (b *base) Close() error {
	if b.db == nil {
		return nil
	}
	b.logger.Debug("closing warehouse connection")
	return b.db.Close()
}

// Ping verifies the session is alive.
func (b *base) Ping(ctx context.Context) error {
	if b.db == nil {
		return fmt.Errorf("warehouse connection not established")
	}
	return b.db.PingContext(ctx)
}

// Exec executes a statement that returns no rows.
func (b *base) Exec(ctx context.Context, sqlText string) error {
	if b.db == nil {
		return fmt.Errorf("warehouse connection not established")
	}
	if _, err := b.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a statement and materializes every row into a ResultSet.
// Materializing up front keeps results immutable snapshots, which is what
// the cache stores and shares across renders.
func (b *base) Query(ctx context.Context, sqlText string) (core.ResultSet, error) {
	if b.db == nil {
		return core.ResultSet{}, fmt.Errorf("warehouse connection not established")
	}

	start := time.Now()
	rows, err := b.db.QueryContext(ctx, sqlText)
	if err != nil {
		return core.ResultSet{}, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rs, err := materialize(rows)
	if err != nil {
		return core.ResultSet{}, err
	}

	b.logger.Debug("warehouse query complete",
		"rows", rs.NumRows(), "elapsed", time.Since(start).Round(time.Millisecond))
	return rs, nil
}

// materialize drains sql.Rows into a ResultSet, normalizing every cell to
// nil, int64, float64, or string.
func materialize(rows *sql.Rows) (core.ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return core.ResultSet{}, fmt.Errorf("failed to read result columns: %w", err)
	}

	rs := core.ResultSet{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return core.ResultSet{}, fmt.Errorf("failed to scan result row: %w", err)
		}

		row := make([]core.Value, len(cols))
		for i, v := range values {
			row[i] = normalize(v)
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return core.ResultSet{}, fmt.Errorf("error iterating result rows: %w", err)
	}
	return rs, nil
}

func normalize(v any) core.Value {
	switch n := v.(type) {
	case nil:
		return nil
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return n
	case float32:
		return float64(n)
	case bool:
		if n {
			return int64(1)
		}
		return int64(0)
	case *big.Int:
		// DuckDB sums integers into HUGEINT, surfaced as *big.Int.
		if n.IsInt64() {
			return n.Int64()
		}
		return n.String()
	case []byte:
		return string(n)
	case string:
		return n
	case time.Time:
		return n.Format(time.RFC3339)
	default:
		return fmt.Sprint(n)
	}
}
