package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-data/funnelboard/pkg/core"
)

func TestNewRejectsUnknownDialect(t *testing.T) {
	_, err := New("bigquery", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported dialect")
}

func TestCatalogHasFiveQueries(t *testing.T) {
	c, err := New(DialectSnowflake, "")
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 5)

	wantOrder := []QueryID{FicoDropoff, TermConfirm, AOVDropoff, ZeroAPR, FicoAOVMatrix}
	for i, q := range all {
		assert.Equal(t, wantOrder[i], q.ID)
		assert.NotEmpty(t, q.Title)
		assert.NotEmpty(t, q.SQL)
		assert.NotEmpty(t, q.Columns)
		assert.Contains(t, q.Columns, q.BucketColumn)
	}
}

func TestLookbackPerDialect(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{DialectSnowflake, "DATEADD(DAY, -30, CURRENT_DATE())"},
		{DialectDuckDB, "CURRENT_DATE - INTERVAL 30 DAY"},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			c, err := New(tt.dialect, "")
			require.NoError(t, err)
			for _, q := range c.All() {
				assert.Contains(t, q.SQL, "CHECKOUT_CREATED_DT >= "+tt.want,
					"query %s should use the %s lookback", q.ID, tt.dialect)
			}
		})
	}
}

func TestTableSubstitution(t *testing.T) {
	c, err := New(DialectSnowflake, "PROD__US.DBT_ANALYTICS.CHECKOUT_FUNNEL_V5")
	require.NoError(t, err)

	for _, q := range c.All() {
		assert.Contains(t, q.SQL, "FROM PROD__US.DBT_ANALYTICS.CHECKOUT_FUNNEL_V5")
	}

	c, err = New(DialectDuckDB, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable, c.Table())
}

func TestBucketLabelsInSQL(t *testing.T) {
	c, err := New(DialectSnowflake, "")
	require.NoError(t, err)

	fico, ok := c.Get(FicoDropoff)
	require.True(t, ok)
	for _, label := range FicoBucketOrder {
		assert.Contains(t, fico.SQL, "'"+label+"'")
	}

	aov, ok := c.Get(AOVDropoff)
	require.True(t, ok)
	for _, label := range AOVBucketOrder {
		assert.Contains(t, aov.SQL, "'"+label+"'")
	}

	// The %% escaping in the template must come out as a single percent.
	apr, ok := c.Get(ZeroAPR)
	require.True(t, ok)
	for _, label := range ZeroAPRBucketOrder {
		assert.Contains(t, apr.SQL, "'"+label+"'")
	}
	assert.NotContains(t, apr.SQL, "%%")
	assert.NotContains(t, apr.SQL, "%!")
}

func TestZeroAPRRestrictions(t *testing.T) {
	c, err := New(DialectSnowflake, "")
	require.NoError(t, err)

	apr, _ := c.Get(ZeroAPR)
	assert.Contains(t, apr.SQL, "TOTAL_AMOUNT >= 1000")
	assert.Contains(t, apr.SQL, "IS_APPROVED = 1")
}

func TestMatrixExcludesUnscored(t *testing.T) {
	c, err := New(DialectDuckDB, "")
	require.NoError(t, err)

	m, _ := c.Get(FicoAOVMatrix)
	assert.Contains(t, m.SQL, "FICO_SCORE IS NOT NULL")
}

func TestNullDenominatorGuard(t *testing.T) {
	c, err := New(DialectSnowflake, "")
	require.NoError(t, err)

	// Every ratio with a potentially-empty group divides through NULLIF.
	for _, id := range []QueryID{FicoDropoff, TermConfirm, AOVDropoff, FicoAOVMatrix} {
		q, _ := c.Get(id)
		assert.True(t, strings.Contains(q.SQL, "NULLIF("), "query %s should guard its denominator", id)
	}
}

func TestSummarizeWorkedExample(t *testing.T) {
	// Rows from the dashboard's reference scenario: overall dropoff is
	// round((50+12)/(90+15)*100, 1).
	fico := core.ResultSet{
		Columns: []string{"FICO_SCORE_BUCKET", "TOTAL_CHECKOUTS", "APPROVED", "TERM_SELECTED", "DROPPED_OFF", "DROPOFF_PCT"},
		Rows: [][]core.Value{
			{"Good (670-739)", int64(100), int64(90), int64(40), int64(50), 55.56},
			{"Poor (<580)", int64(20), int64(15), int64(3), int64(12), 80.0},
		},
	}

	s, err := Summarize(fico)
	require.NoError(t, err)

	assert.Equal(t, 105.0, s.Approved)
	assert.Equal(t, 43.0, s.TermSelected)
	assert.Equal(t, 62.0, s.DroppedOff)
	require.NotNil(t, s.OverallDropoffPct)
	assert.Equal(t, 59.0, *s.OverallDropoffPct)
}

func TestSummarizeZeroApprovedYieldsNil(t *testing.T) {
	fico := core.ResultSet{
		Columns: []string{"FICO_SCORE_BUCKET", "APPROVED", "DROPPED_OFF"},
		Rows: [][]core.Value{
			{"No Score", int64(0), int64(0)},
		},
	}

	s, err := Summarize(fico)
	require.NoError(t, err)
	assert.Nil(t, s.OverallDropoffPct)
}

func TestSummarizeMissingColumn(t *testing.T) {
	_, err := Summarize(core.ResultSet{Columns: []string{"X"}})
	require.Error(t, err)
}
