package warehouse

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-data/funnelboard/pkg/core"
)

func TestDuckDBAdapterRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := NewDuckDBAdapter(nil)

	require.NoError(t, a.Connect(ctx, core.SourceConfig{Type: "duckdb"}))
	defer func() { _ = a.Close() }()

	require.NoError(t, a.Ping(ctx))

	require.NoError(t, a.Exec(ctx, `CREATE TABLE checkouts (id VARCHAR, amount DOUBLE, approved INTEGER)`))
	require.NoError(t, a.Exec(ctx, `INSERT INTO checkouts VALUES ('chk_1', 120.5, 1), ('chk_2', 980.0, 0)`))

	rs, err := a.Query(ctx, `SELECT id, SUM(amount) AS total, SUM(approved) AS approved FROM checkouts GROUP BY id ORDER BY id`)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "total", "approved"}, rs.Columns)
	require.Equal(t, 2, rs.NumRows())
	assert.Equal(t, "chk_1", rs.Rows[0][0])
	assert.Equal(t, 120.5, rs.Rows[0][1])
	// HUGEINT aggregates materialize as int64.
	assert.Equal(t, int64(1), rs.Rows[0][2])
	assert.Equal(t, int64(0), rs.Rows[1][2])
}

func TestOpenDuckDBFileBased(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "funnel.duckdb")

	a, err := Open(ctx, core.SourceConfig{Type: "duckdb", Path: path})
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	require.NoError(t, a.Exec(ctx, `CREATE TABLE t (x INTEGER)`))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
