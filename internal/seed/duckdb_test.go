package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-data/funnelboard/internal/catalog"
	"github.com/meridian-data/funnelboard/internal/warehouse"
	"github.com/meridian-data/funnelboard/pkg/core"
)

// Seeds an in-memory DuckDB and runs the full query catalog against it,
// the same path `funnelboard seed` followed by `funnelboard serve` takes.
func TestSeededDuckDBRunsFullCatalog(t *testing.T) {
	ctx := context.Background()
	adapter := warehouse.NewDuckDBAdapter(nil)
	require.NoError(t, adapter.Connect(ctx, core.SourceConfig{Type: "duckdb"}))
	defer func() { _ = adapter.Close() }()

	require.NoError(t, New(adapter, nil).Run(ctx, Options{
		Table: "CHECKOUT_FUNNEL_V5",
		Rows:  2000,
		Seed:  7,
	}))

	cat, err := catalog.New(catalog.DialectDuckDB, "CHECKOUT_FUNNEL_V5")
	require.NoError(t, err)

	results := make(map[catalog.QueryID]core.ResultSet)
	for _, q := range cat.All() {
		rs, err := adapter.Query(ctx, q.SQL)
		require.NoError(t, err, "query %s", q.ID)
		assert.Equal(t, q.Columns, rs.Columns, "query %s", q.ID)
		assert.Positive(t, rs.NumRows(), "query %s returned no rows", q.ID)
		results[q.ID] = rs
	}

	// Within each FICO bucket every approval either selected a term or
	// dropped off, and approvals never exceed checkouts.
	fico := results[catalog.FicoDropoff]
	totalIdx := fico.ColumnIndex("TOTAL_CHECKOUTS")
	approvedIdx := fico.ColumnIndex("APPROVED")
	termIdx := fico.ColumnIndex("TERM_SELECTED")
	droppedIdx := fico.ColumnIndex("DROPPED_OFF")

	for i := range fico.Rows {
		bucket := fico.Rows[i][0]
		total, ok := fico.FloatAt(i, totalIdx)
		require.True(t, ok, "bucket %v total", bucket)
		approved, ok := fico.FloatAt(i, approvedIdx)
		require.True(t, ok, "bucket %v approved", bucket)
		term, ok := fico.FloatAt(i, termIdx)
		require.True(t, ok, "bucket %v term selected", bucket)
		dropped, ok := fico.FloatAt(i, droppedIdx)
		require.True(t, ok, "bucket %v dropped off", bucket)

		assert.Equal(t, approved, term+dropped, "bucket %v", bucket)
		assert.LessOrEqual(t, approved, total, "bucket %v", bucket)
	}

	s, err := catalog.Summarize(fico)
	require.NoError(t, err)
	assert.Positive(t, s.Approved)
	require.NotNil(t, s.OverallDropoffPct)
	assert.Greater(t, *s.OverallDropoffPct, 0.0)
	assert.Less(t, *s.OverallDropoffPct, 100.0)
}
