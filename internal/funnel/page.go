// Package funnel binds cached query results into the page model the
// dashboard and the report command render: summary metrics, four tabbed
// panels pairing a chart with a table, and the FICO x AOV heatmap.
package funnel

import (
	"time"

	"github.com/meridian-data/funnelboard/pkg/core"
)

// Page is the fully bound dashboard model for one render.
type Page struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	RefreshedAt time.Time `json:"refreshedAt"`
	Summary     Summary   `json:"summary"`
	Tabs        []Tab     `json:"tabs"`
}

// Summary holds the four headline metrics.
type Summary struct {
	Approved     float64 `json:"approved"`
	TermSelected float64 `json:"termSelected"`
	DroppedOff   float64 `json:"droppedOff"`
	// OverallDropoffPct is null when no approved checkouts exist.
	OverallDropoffPct *float64 `json:"overallDropoffPct"`
}

// Tab is one dashboard panel: a chart paired with its data table, plus an
// optional heatmap (AOV panel only).
type Tab struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Chart   Chart    `json:"chart"`
	Table   Table    `json:"table"`
	Heatmap *Heatmap `json:"heatmap,omitempty"`
}

// Chart is a bar chart: one or more series over shared bucket labels.
// Kind is "bar", "grouped", or "stacked". Null rates stay null so empty
// buckets render as gaps, not zero bars.
type Chart struct {
	Kind   string   `json:"kind"`
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
	YTitle string   `json:"yTitle"`
}

// Series is one named value sequence aligned with the chart labels.
type Series struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// Table is a rendered data table with human-readable column labels.
type Table struct {
	Columns []string       `json:"columns"`
	Rows    [][]core.Value `json:"rows"`
}

// Heatmap is the pivoted FICO x AOV dropoff matrix. Absent cells are null.
type Heatmap struct {
	Title     string       `json:"title"`
	RowLabels []string     `json:"rowLabels"`
	ColLabels []string     `json:"colLabels"`
	Cells     [][]*float64 `json:"cells"`
}
