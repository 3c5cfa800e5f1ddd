// Package catalog defines the fixed set of named analytical queries issued
// against the checkout funnel table, together with their bucket vocabularies
// and display orders.
//
// This is the only package holding business logic: bucket boundaries, ratio
// formulas, and the 30-day lookback window all live in the SQL text here.
// Everything downstream (cache, views, dashboard) is shape plumbing.
package catalog

import (
	"fmt"
)

// QueryID identifies one of the five catalog queries.
type QueryID string

const (
	FicoDropoff   QueryID = "fico_dropoff"
	TermConfirm   QueryID = "term_confirm"
	AOVDropoff    QueryID = "aov_dropoff"
	ZeroAPR       QueryID = "zero_apr"
	FicoAOVMatrix QueryID = "fico_aov_matrix"
)

// Dialect selects the SQL flavor emitted for a warehouse source.
type Dialect string

const (
	DialectSnowflake Dialect = "snowflake"
	DialectDuckDB    Dialect = "duckdb"
)

// LookbackDays is the fixed analysis window. It is evaluated warehouse-side
// at query time, so a cached result keeps its original window until TTL
// expiry (accepted staleness across the midnight rollover).
const LookbackDays = 30

// DefaultTable is the funnel events table queried when config names none.
const DefaultTable = "CHECKOUT_FUNNEL_V5"

// Bucket display orders. SQL GROUP BY gives no ordering guarantee, so these
// are re-applied to fetched rows before rendering.
var (
	// FicoBucketOrder orders the six credit-score bands, best first.
	FicoBucketOrder = []string{
		"Exceptional (800+)",
		"Very Good (740-799)",
		"Good (670-739)",
		"Fair (580-669)",
		"Poor (<580)",
		"No Score",
	}

	// AOVBucketOrder carries ordinal prefixes so lexical sort already
	// yields the intended order; kept explicit anyway.
	AOVBucketOrder = []string{
		"a. <$150",
		"b. $150-$500",
		"c. $500-$1000",
		"d. $1000+",
	}

	// ZeroAPRBucketOrder orders checkouts by the longest 0%-APR offer shown.
	ZeroAPRBucketOrder = []string{
		"a. No 0% APR",
		"b. 0% for 1-6 mo",
		"c. 0% for 7-12 mo",
		"d. 0% for 13+ mo",
	}

	// MatrixFicoOrder is the heatmap row order (scored bands only; the
	// matrix query excludes checkouts without a score).
	MatrixFicoOrder = []string{
		"High FICO (740+)",
		"Good (670-739)",
		"Fair (580-669)",
		"Poor (<580)",
	}

	// MatrixAOVOrder is the heatmap column order.
	MatrixAOVOrder = []string{
		"<$150",
		"$150-$500",
		"$500-$1000",
		"$1000+",
	}
)

// NamedQuery is one fixed catalog entry: resolved SQL text plus the result
// contract the view layer binds against.
type NamedQuery struct {
	ID    QueryID
	Title string

	// SQL is the dialect-resolved query text.
	SQL string

	// Columns is the exact column set the query produces, in order.
	// The view binder treats a missing column as a contract violation.
	Columns []string

	// BucketColumn is the bucket label column, and DisplayOrder the render
	// order re-established after fetch.
	BucketColumn string
	DisplayOrder []string
}

// Catalog is the immutable set of five named queries for one source dialect.
type Catalog struct {
	dialect Dialect
	table   string
	queries []NamedQuery
}

// New builds the catalog for a dialect. An empty table uses DefaultTable
// (resolved in the session's configured database/schema).
func New(dialect Dialect, table string) (*Catalog, error) {
	var cutoff string
	switch dialect {
	case DialectSnowflake:
		cutoff = fmt.Sprintf("DATEADD(DAY, -%d, CURRENT_DATE())", LookbackDays)
	case DialectDuckDB:
		cutoff = fmt.Sprintf("CURRENT_DATE - INTERVAL %d DAY", LookbackDays)
	default:
		return nil, fmt.Errorf("unsupported dialect: %q", dialect)
	}
	if table == "" {
		table = DefaultTable
	}

	c := &Catalog{
		dialect: dialect,
		table:   table,
		queries: []NamedQuery{
			{
				ID:    FicoDropoff,
				Title: "Term Selection Dropoff by FICO Score",
				SQL:   fmt.Sprintf(ficoDropoffSQL, table, cutoff),
				Columns: []string{
					"FICO_SCORE_BUCKET", "TOTAL_CHECKOUTS", "APPROVED",
					"TERM_SELECTED", "DROPPED_OFF", "DROPOFF_PCT",
				},
				BucketColumn: "FICO_SCORE_BUCKET",
				DisplayOrder: FicoBucketOrder,
			},
			{
				ID:    TermConfirm,
				Title: "Term Selection vs Loan Confirmation",
				SQL:   fmt.Sprintf(termConfirmSQL, table, cutoff),
				Columns: []string{
					"FICO_SCORE_BUCKET",
					"WITH_TERM_SELECTED", "CONFIRMED_WITH_TERM", "CONFIRM_RATE_WITH_TERM",
					"WITHOUT_TERM_SELECTED", "CONFIRMED_WITHOUT_TERM", "CONFIRM_RATE_WITHOUT_TERM",
				},
				BucketColumn: "FICO_SCORE_BUCKET",
				DisplayOrder: FicoBucketOrder,
			},
			{
				ID:    AOVDropoff,
				Title: "Term Selection Dropoff by Order Value",
				SQL:   fmt.Sprintf(aovDropoffSQL, table, cutoff),
				Columns: []string{
					"AOV_BUCKET", "APPROVED", "DROPPED_OFF", "DROPOFF_PCT",
				},
				BucketColumn: "AOV_BUCKET",
				DisplayOrder: AOVBucketOrder,
			},
			{
				ID:    ZeroAPR,
				Title: "0% APR Offer Impact on Conversion ($1000+ Orders)",
				SQL:   fmt.Sprintf(zeroAPRSQL, table, cutoff),
				Columns: []string{
					"ZERO_APR_BUCKET", "TOTAL_APPROVED", "COMPLETED",
					"DROPPED_OFF", "COMPLETION_RATE", "DROPOFF_RATE",
				},
				BucketColumn: "ZERO_APR_BUCKET",
				DisplayOrder: ZeroAPRBucketOrder,
			},
			{
				ID:    FicoAOVMatrix,
				Title: "FICO x AOV Dropoff Matrix",
				SQL:   fmt.Sprintf(ficoAOVMatrixSQL, table, cutoff),
				Columns: []string{
					"FICO_GROUP", "AOV_BUCKET", "APPROVED",
					"DROPPED_OFF", "DROPOFF_PCT",
				},
				BucketColumn: "FICO_GROUP",
				DisplayOrder: MatrixFicoOrder,
			},
		},
	}
	return c, nil
}

// Dialect returns the dialect the catalog was built for.
func (c *Catalog) Dialect() Dialect { return c.dialect }

// Table returns the funnel table name the queries target.
func (c *Catalog) Table() string { return c.table }

// Get returns the named query by ID.
func (c *Catalog) Get(id QueryID) (NamedQuery, bool) {
	for _, q := range c.queries {
		if q.ID == id {
			return q, true
		}
	}
	return NamedQuery{}, false
}

// All returns the five queries in dashboard order.
func (c *Catalog) All() []NamedQuery {
	return append([]NamedQuery(nil), c.queries...)
}
