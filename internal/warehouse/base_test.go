package warehouse

import (
	"context"
	"math/big"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryMaterializesRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT .+ FROM CHECKOUT_FUNNEL_V5").WillReturnRows(
		sqlmock.NewRows([]string{"FICO_SCORE_BUCKET", "APPROVED", "DROPOFF_PCT"}).
			AddRow("Good (670-739)", int64(90), 55.56).
			AddRow([]byte("Poor (<580)"), int64(15), 80.0).
			AddRow("No Score", int64(0), nil))

	var b base
	b.setDB(db, nil)

	rs, err := b.Query(context.Background(), "SELECT x FROM CHECKOUT_FUNNEL_V5")
	require.NoError(t, err)

	assert.Equal(t, []string{"FICO_SCORE_BUCKET", "APPROVED", "DROPOFF_PCT"}, rs.Columns)
	require.Equal(t, 3, rs.NumRows())

	// []byte normalizes to string, NULL to nil.
	assert.Equal(t, "Poor (<580)", rs.Rows[1][0])
	assert.Equal(t, int64(90), rs.Rows[0][1])
	assert.Equal(t, 55.56, rs.Rows[0][2])
	assert.Nil(t, rs.Rows[2][2])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryErrorPropagates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	var b base
	b.setDB(db, nil)

	_, err = b.Query(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute query")
}

func TestQueryWithoutConnection(t *testing.T) {
	var b base
	b.setDB(nil, nil)

	_, err := b.Query(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")

	err = b.Exec(context.Background(), "CREATE TABLE t (x INT)")
	require.Error(t, err)

	// Close on a disconnected adapter is a no-op.
	assert.NoError(t, b.Close())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "int", in: 42, want: int64(42)},
		{name: "int32", in: int32(7), want: int64(7)},
		{name: "float32", in: float32(1.5), want: float64(1.5)},
		{name: "bool true", in: true, want: int64(1)},
		{name: "bool false", in: false, want: int64(0)},
		{name: "bytes", in: []byte("x"), want: "x"},
		{name: "hugeint", in: big.NewInt(105), want: int64(105)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.in))
		})
	}
}

func TestRegistryKnowsBothSources(t *testing.T) {
	assert.Contains(t, List(), "snowflake")
	assert.Contains(t, List(), "duckdb")

	_, err := New("bigquery")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source type")

	_, err = New("")
	require.Error(t, err)
}
