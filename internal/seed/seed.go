// Package seed creates and populates a synthetic checkout funnel table,
// mainly for local DuckDB development and demos.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/meridian-data/funnelboard/internal/warehouse"
)

const insertBatchSize = 200

// Options controls how much data is generated and how repeatably.
type Options struct {
	Table string
	Rows  int
	Seed  int64
}

// Seeder writes a synthetic funnel table through a warehouse adapter.
type Seeder struct {
	adapter warehouse.Adapter
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Seeder on an already-connected adapter.
func New(adapter warehouse.Adapter, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Seeder{adapter: adapter, logger: logger, now: time.Now}
}

// Run drops and recreates the funnel table, then inserts opts.Rows
// synthetic checkouts spread over the last 45 days. The same seed always
// produces the same rows.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	if opts.Table == "" {
		return fmt.Errorf("seed: table name required")
	}
	if opts.Rows <= 0 {
		return fmt.Errorf("seed: row count must be positive, got %d", opts.Rows)
	}

	start := time.Now()
	if err := s.adapter.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", opts.Table)); err != nil {
		return fmt.Errorf("seed: drop table: %w", err)
	}
	if err := s.adapter.Exec(ctx, fmt.Sprintf(createTableSQL, opts.Table)); err != nil {
		return fmt.Errorf("seed: create table: %w", err)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	today := s.now().UTC().Truncate(24 * time.Hour)

	inserted := 0
	for inserted < opts.Rows {
		n := opts.Rows - inserted
		if n > insertBatchSize {
			n = insertBatchSize
		}
		stmt := buildInsert(opts.Table, rng, today, inserted, n)
		if err := s.adapter.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("seed: insert batch at row %d: %w", inserted, err)
		}
		inserted += n
	}

	s.logger.Info("seeded funnel table",
		"table", opts.Table,
		"rows", inserted,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

const createTableSQL = `CREATE TABLE %s (
    CHECKOUT_ID VARCHAR,
    CHECKOUT_CREATED_DT DATE,
    FICO_SCORE INTEGER,
    TOTAL_AMOUNT DOUBLE,
    IS_APPROVED INTEGER,
    TERM_LENGTH INTEGER,
    IS_CONFIRMED INTEGER,
    OFFERED_APR1 DOUBLE,
    OFFERED_PLAN1_LENGTH INTEGER,
    OFFERED_APR2 DOUBLE,
    OFFERED_PLAN2_LENGTH INTEGER,
    OFFERED_APR3 DOUBLE,
    OFFERED_PLAN3_LENGTH INTEGER
)`

// buildInsert renders one multi-row INSERT statement.
func buildInsert(table string, rng *rand.Rand, today time.Time, offset, n int) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" VALUES\n")
	for i := range n {
		if i > 0 {
			sb.WriteString(",\n")
		}
		writeRow(&sb, rng, today, offset+i)
	}
	return sb.String()
}

// writeRow generates one checkout. Dropoff probability rises as credit
// quality falls, so the seeded dashboard shows the expected shape.
func writeRow(sb *strings.Builder, rng *rand.Rand, today time.Time, id int) {
	day := today.AddDate(0, 0, -rng.Intn(45))

	// ~8% of checkouts carry no credit score.
	var fico string
	dropP := 0.3
	if rng.Float64() < 0.08 {
		fico = "NULL"
		dropP = 0.7
	} else {
		score := 520 + rng.Intn(330)
		fico = fmt.Sprintf("%d", score)
		switch {
		case score >= 800:
			dropP = 0.10
		case score >= 740:
			dropP = 0.18
		case score >= 670:
			dropP = 0.30
		case score >= 580:
			dropP = 0.45
		default:
			dropP = 0.60
		}
	}

	amount := 40 + rng.Float64()*1760
	approved := 0
	if fico != "NULL" && rng.Float64() < 0.85 {
		approved = 1
	} else if fico == "NULL" && rng.Float64() < 0.25 {
		approved = 1
	}

	term := "NULL"
	confirmed := 0
	if approved == 1 && rng.Float64() > dropP {
		term = fmt.Sprintf("%d", []int{3, 6, 12, 24}[rng.Intn(4)])
		if rng.Float64() < 0.9 {
			confirmed = 1
		}
	}

	// Up to three financing offers; a zero APR shows up more often on
	// large carts.
	offers := make([]string, 0, 6)
	for slot := range 3 {
		if slot > 0 && rng.Float64() < 0.4 {
			offers = append(offers, "NULL", "NULL")
			continue
		}
		apr := []float64{0, 9.99, 14.99, 19.99, 29.99}[rng.Intn(5)]
		if amount >= 1000 && rng.Float64() < 0.3 {
			apr = 0
		}
		length := []int{3, 6, 12, 18, 24}[rng.Intn(5)]
		offers = append(offers, fmt.Sprintf("%.2f", apr), fmt.Sprintf("%d", length))
	}

	fmt.Fprintf(sb, "('chk_%06d', DATE '%s', %s, %.2f, %d, %s, %d, %s)",
		id,
		day.Format("2006-01-02"),
		fico,
		amount,
		approved,
		term,
		confirmed,
		strings.Join(offers, ", "))
}
