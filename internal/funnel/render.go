package funnel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-data/funnelboard/internal/cache"
	"github.com/meridian-data/funnelboard/internal/catalog"
	"github.com/meridian-data/funnelboard/internal/views"
	"github.com/meridian-data/funnelboard/pkg/core"
)

// ConfigHint is appended to warehouse failures surfaced to the user.
const ConfigHint = "check the [source] section of funnelboard.yaml and your warehouse credentials"

// RenderError wraps a warehouse or auth failure from a render. The whole
// render aborts: no partial page is produced.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("dashboard render failed: %v (%s)", e.Err, ConfigHint)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Pipeline renders the dashboard page: it resolves the five catalog queries
// through the cache, reshapes each result, and assembles the page model.
type Pipeline struct {
	catalog *catalog.Catalog
	cache   *cache.Cache
	logger  *slog.Logger
}

// NewPipeline creates a Pipeline over a catalog and a result cache.
func NewPipeline(cat *catalog.Catalog, c *cache.Cache, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{catalog: cat, cache: c, logger: logger}
}

// Render performs one full dashboard render. Warehouse failures come back
// as *RenderError; a views.ContractError means catalog and binder drifted
// and is returned as-is so callers fail loudly.
func (p *Pipeline) Render(ctx context.Context) (*Page, error) {
	start := time.Now()

	results := make(map[catalog.QueryID]core.ResultSet, 5)
	for _, q := range p.catalog.All() {
		rs, err := p.cache.GetOrFetch(ctx, string(q.ID), q.SQL)
		if err != nil {
			return nil, &RenderError{Err: fmt.Errorf("query %s: %w", q.ID, err)}
		}
		// Re-establish the catalog's display order; GROUP BY promises none.
		ordered, err := views.Reorder(rs, q.BucketColumn, q.DisplayOrder)
		if err != nil {
			return nil, err
		}
		results[q.ID] = ordered
	}

	page, err := p.bind(results)
	if err != nil {
		var ce *views.ContractError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &RenderError{Err: err}
	}

	p.logger.Debug("dashboard render complete", "elapsed", time.Since(start).Round(time.Millisecond))
	return page, nil
}

// bind assembles the page model from the ordered results.
func (p *Pipeline) bind(results map[catalog.QueryID]core.ResultSet) (*Page, error) {
	summary, err := catalog.Summarize(results[catalog.FicoDropoff])
	if err != nil {
		return nil, err
	}

	ficoTab, err := p.bindFicoTab(results[catalog.FicoDropoff])
	if err != nil {
		return nil, err
	}
	termTab, err := p.bindTermTab(results[catalog.TermConfirm])
	if err != nil {
		return nil, err
	}
	aovTab, err := p.bindAOVTab(results[catalog.AOVDropoff], results[catalog.FicoAOVMatrix])
	if err != nil {
		return nil, err
	}
	aprTab, err := p.bindZeroAPRTab(results[catalog.ZeroAPR])
	if err != nil {
		return nil, err
	}

	page := &Page{
		Title:       "Checkout Funnel Analytics",
		Source:      p.catalog.Table(),
		RefreshedAt: p.oldestFetch(),
		Summary: Summary{
			Approved:          summary.Approved,
			TermSelected:      summary.TermSelected,
			DroppedOff:        summary.DroppedOff,
			OverallDropoffPct: summary.OverallDropoffPct,
		},
		Tabs: []Tab{ficoTab, termTab, aovTab, aprTab},
	}
	return page, nil
}

// oldestFetch returns the oldest cache timestamp across the five queries,
// the conservative freshness shown in the footer.
func (p *Pipeline) oldestFetch() time.Time {
	var oldest time.Time
	for _, q := range p.catalog.All() {
		if at, ok := p.cache.FetchedAt(string(q.ID)); ok {
			if oldest.IsZero() || at.Before(oldest) {
				oldest = at
			}
		}
	}
	return oldest
}

func (p *Pipeline) bindFicoTab(fico core.ResultSet) (Tab, error) {
	q, _ := p.catalog.Get(catalog.FicoDropoff)

	// "No Score" stays in the table but not on the chart.
	chartRows, err := views.FilterRows(fico, "FICO_SCORE_BUCKET", "No Score")
	if err != nil {
		return Tab{}, err
	}
	chart, err := barChart(chartRows, "FICO_SCORE_BUCKET", "Dropoff %", "DROPOFF_PCT")
	if err != nil {
		return Tab{}, err
	}

	tableRows, err := views.Select(fico,
		"FICO_SCORE_BUCKET", "APPROVED", "TERM_SELECTED", "DROPPED_OFF", "DROPOFF_PCT")
	if err != nil {
		return Tab{}, err
	}
	table := views.Rename(tableRows, map[string]string{
		"FICO_SCORE_BUCKET": "FICO Bucket",
		"APPROVED":          "Approved",
		"TERM_SELECTED":     "Term Selected",
		"DROPPED_OFF":       "Dropped Off",
		"DROPOFF_PCT":       "Dropoff %",
	})

	return Tab{
		ID:    "fico",
		Title: q.Title,
		Chart: chart,
		Table: Table{Columns: table.Columns, Rows: table.Rows},
	}, nil
}

func (p *Pipeline) bindTermTab(term core.ResultSet) (Tab, error) {
	q, _ := p.catalog.Get(catalog.TermConfirm)

	chartRows, err := views.FilterRows(term, "FICO_SCORE_BUCKET", "No Score")
	if err != nil {
		return Tab{}, err
	}
	melted, err := views.Melt(chartRows,
		"FICO_SCORE_BUCKET",
		[]string{"CONFIRM_RATE_WITH_TERM", "CONFIRM_RATE_WITHOUT_TERM"},
		[]string{"With Term Selected", "Without Term Selected"},
		"Type", "Confirmation Rate")
	if err != nil {
		return Tab{}, err
	}
	chart, err := groupedChart(melted, "FICO_SCORE_BUCKET", "Type", "Confirmation Rate")
	if err != nil {
		return Tab{}, err
	}

	table := views.Rename(term, map[string]string{
		"FICO_SCORE_BUCKET":         "FICO Bucket",
		"WITH_TERM_SELECTED":        "With Term",
		"CONFIRMED_WITH_TERM":       "Confirmed (Term)",
		"CONFIRM_RATE_WITH_TERM":    "Confirm Rate (Term) %",
		"WITHOUT_TERM_SELECTED":     "No Term",
		"CONFIRMED_WITHOUT_TERM":    "Confirmed (No Term)",
		"CONFIRM_RATE_WITHOUT_TERM": "Confirm Rate (No Term) %",
	})

	return Tab{
		ID:    "term",
		Title: q.Title,
		Chart: chart,
		Table: Table{Columns: table.Columns, Rows: table.Rows},
	}, nil
}

func (p *Pipeline) bindAOVTab(aov, matrix core.ResultSet) (Tab, error) {
	q, _ := p.catalog.Get(catalog.AOVDropoff)

	chart, err := barChart(aov, "AOV_BUCKET", "Dropoff %", "DROPOFF_PCT")
	if err != nil {
		return Tab{}, err
	}

	table := views.Rename(aov, map[string]string{
		"AOV_BUCKET":  "AOV Bucket",
		"APPROVED":    "Approved",
		"DROPPED_OFF": "Dropped Off",
		"DROPOFF_PCT": "Dropoff %",
	})

	mq, _ := p.catalog.Get(catalog.FicoAOVMatrix)
	pivot, err := views.Pivot(matrix, "FICO_GROUP", "AOV_BUCKET", "DROPOFF_PCT",
		catalog.MatrixFicoOrder, catalog.MatrixAOVOrder)
	if err != nil {
		return Tab{}, err
	}

	heatmap := &Heatmap{
		Title:     mq.Title,
		RowLabels: pivot.RowLabels,
		ColLabels: pivot.ColLabels,
		Cells:     make([][]*float64, len(pivot.Cells)),
	}
	for r, row := range pivot.Cells {
		heatmap.Cells[r] = make([]*float64, len(row))
		for c, v := range row {
			if f, ok := core.AsFloat(v); ok {
				f := f
				heatmap.Cells[r][c] = &f
			}
		}
	}

	return Tab{
		ID:      "aov",
		Title:   q.Title,
		Chart:   chart,
		Table:   Table{Columns: table.Columns, Rows: table.Rows},
		Heatmap: heatmap,
	}, nil
}

func (p *Pipeline) bindZeroAPRTab(apr core.ResultSet) (Tab, error) {
	q, _ := p.catalog.Get(catalog.ZeroAPR)

	labels, err := columnLabels(apr, "ZERO_APR_BUCKET")
	if err != nil {
		return Tab{}, err
	}
	completion, err := columnFloats(apr, "COMPLETION_RATE")
	if err != nil {
		return Tab{}, err
	}
	dropoff, err := columnFloats(apr, "DROPOFF_RATE")
	if err != nil {
		return Tab{}, err
	}

	chart := Chart{
		Kind:   "stacked",
		Labels: labels,
		Series: []Series{
			{Name: "Completion %", Values: completion},
			{Name: "Dropoff %", Values: dropoff},
		},
		YTitle: "Rate %",
	}

	table := views.Rename(apr, map[string]string{
		"ZERO_APR_BUCKET": "0% APR Term",
		"TOTAL_APPROVED":  "Total Approved",
		"COMPLETED":       "Completed",
		"DROPPED_OFF":     "Dropped Off",
		"COMPLETION_RATE": "Completion %",
		"DROPOFF_RATE":    "Dropoff %",
	})

	return Tab{
		ID:    "apr",
		Title: q.Title,
		Chart: chart,
		Table: Table{Columns: table.Columns, Rows: table.Rows},
	}, nil
}

// barChart builds a single-series bar chart from label and value columns.
func barChart(rs core.ResultSet, labelColumn, seriesName, valueColumn string) (Chart, error) {
	labels, err := columnLabels(rs, labelColumn)
	if err != nil {
		return Chart{}, err
	}
	values, err := columnFloats(rs, valueColumn)
	if err != nil {
		return Chart{}, err
	}
	return Chart{
		Kind:   "bar",
		Labels: labels,
		Series: []Series{{Name: seriesName, Values: values}},
		YTitle: seriesName,
	}, nil
}

// groupedChart builds a grouped bar chart from a melted (long-form) result.
// Labels keep first-appearance order; one series per distinct series label.
func groupedChart(melted core.ResultSet, labelColumn, seriesColumn, valueColumn string) (Chart, error) {
	lIdx := melted.ColumnIndex(labelColumn)
	if lIdx < 0 {
		return Chart{}, &views.ContractError{Transform: "grouped chart", Column: labelColumn}
	}
	sIdx := melted.ColumnIndex(seriesColumn)
	if sIdx < 0 {
		return Chart{}, &views.ContractError{Transform: "grouped chart", Column: seriesColumn}
	}
	vIdx := melted.ColumnIndex(valueColumn)
	if vIdx < 0 {
		return Chart{}, &views.ContractError{Transform: "grouped chart", Column: valueColumn}
	}

	var labels, seriesNames []string
	labelPos := make(map[string]int)
	seriesPos := make(map[string]int)
	for _, row := range melted.Rows {
		if l, ok := row[lIdx].(string); ok {
			if _, seen := labelPos[l]; !seen {
				labelPos[l] = len(labels)
				labels = append(labels, l)
			}
		}
		if s, ok := row[sIdx].(string); ok {
			if _, seen := seriesPos[s]; !seen {
				seriesPos[s] = len(seriesNames)
				seriesNames = append(seriesNames, s)
			}
		}
	}

	series := make([]Series, len(seriesNames))
	for i, name := range seriesNames {
		series[i] = Series{Name: name, Values: make([]*float64, len(labels))}
	}
	for _, row := range melted.Rows {
		l, _ := row[lIdx].(string)
		s, _ := row[sIdx].(string)
		li, okL := labelPos[l]
		si, okS := seriesPos[s]
		if !okL || !okS {
			continue
		}
		if f, ok := core.AsFloat(row[vIdx]); ok {
			f := f
			series[si].Values[li] = &f
		}
	}

	return Chart{
		Kind:   "grouped",
		Labels: labels,
		Series: series,
		YTitle: valueColumn,
	}, nil
}

func columnLabels(rs core.ResultSet, column string) ([]string, error) {
	idx := rs.ColumnIndex(column)
	if idx < 0 {
		return nil, &views.ContractError{Transform: "chart labels", Column: column}
	}
	labels := make([]string, len(rs.Rows))
	for i := range rs.Rows {
		labels[i] = rs.StringAt(i, idx)
	}
	return labels, nil
}

func columnFloats(rs core.ResultSet, column string) ([]*float64, error) {
	idx := rs.ColumnIndex(column)
	if idx < 0 {
		return nil, &views.ContractError{Transform: "chart values", Column: column}
	}
	values := make([]*float64, len(rs.Rows))
	for i := range rs.Rows {
		if f, ok := rs.FloatAt(i, idx); ok {
			f := f
			values[i] = &f
		}
	}
	return values, nil
}
