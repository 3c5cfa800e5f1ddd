package dashboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-data/funnelboard/internal/funnel"
	"github.com/meridian-data/funnelboard/pkg/core"
)

func float(v float64) *float64 { return &v }

func samplePage() *funnel.Page {
	pct := 41.0
	return &funnel.Page{
		Title:  "Checkout Funnel Analytics",
		Source: "CHECKOUT_FUNNEL_V5",
		Summary: funnel.Summary{
			Approved:          105,
			TermSelected:      62,
			DroppedOff:        43,
			OverallDropoffPct: &pct,
		},
		Tabs: []funnel.Tab{
			{
				ID:    "fico",
				Title: "Dropoff by FICO",
				Chart: funnel.Chart{
					Kind:   "bar",
					Labels: []string{"Good (670-739)", "Poor (<580)"},
					Series: []funnel.Series{{Name: "Dropoff %", Values: []*float64{float(44.4), nil}}},
				},
				Table: funnel.Table{
					Columns: []string{"FICO Bucket", "Dropoff %"},
					Rows: [][]core.Value{
						{"Good (670-739)", float64(55.56)},
						{"Poor (<580)", nil},
					},
				},
			},
		},
	}
}

func TestRenderPageEscapesAndFormats(t *testing.T) {
	body, err := renderPage(samplePage())
	require.NoError(t, err)
	html := string(body)

	assert.Contains(t, html, "Checkout Funnel Analytics")
	assert.Contains(t, html, "CHECKOUT_FUNNEL_V5")
	assert.Contains(t, html, "41.0%")
	assert.Contains(t, html, "44.4")
	// Table cells keep the warehouse's two-decimal rounding.
	assert.Contains(t, html, "55.56")
	assert.NotContains(t, html, "55.6<")
	// Null dropoff renders as a dash, not as "0".
	assert.Contains(t, html, "—")
	// Labels with < must be escaped.
	assert.Contains(t, html, "Poor (&lt;580)")
	assert.NotContains(t, html, "Poor (<580)")
}

func TestRenderBoardIsAFragment(t *testing.T) {
	body, err := renderBoard(samplePage())
	require.NoError(t, err)
	html := string(body)

	assert.True(t, strings.HasPrefix(html, `<div id="board">`))
	assert.NotContains(t, html, "<!DOCTYPE html>")
}

func TestBarWidthsScaleToMax(t *testing.T) {
	pv := buildChartView(funnel.Chart{
		Kind:   "bar",
		Labels: []string{"a", "b", "c"},
		Series: []funnel.Series{{Name: "x", Values: []*float64{float(25), float(50), nil}}},
	})

	require.Len(t, pv.Groups, 3)
	assert.InDelta(t, 50.0, pv.Groups[0].Bars[0].WidthPct, 0.001)
	assert.InDelta(t, 100.0, pv.Groups[1].Bars[0].WidthPct, 0.001)
	assert.Equal(t, 0.0, pv.Groups[2].Bars[0].WidthPct)
	assert.Equal(t, "n/a", pv.Groups[2].Bars[0].Display)
}

func TestHeatStyle(t *testing.T) {
	assert.Contains(t, string(heatStyle(nil)), "#f4f4f4")
	assert.Contains(t, string(heatStyle(float(95))), "color:#fff")
	assert.Contains(t, string(heatStyle(float(10))), "color:#222")
}

func TestRenderErrorPage(t *testing.T) {
	body, err := renderErrorPage(assert.AnError)
	require.NoError(t, err)
	html := string(body)

	assert.Contains(t, html, "Dashboard unavailable")
	assert.NotContains(t, html, "Total Approved")
}
