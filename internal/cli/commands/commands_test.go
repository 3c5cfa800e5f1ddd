package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-data/funnelboard/internal/funnel"
	"github.com/meridian-data/funnelboard/pkg/core"
)

func reportPage() *funnel.Page {
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
				Title: "Term Selection Dropoff by FICO Score",
				Table: funnel.Table{
					Columns: []string{"FICO Bucket", "Approved", "Dropoff %"},
					Rows: [][]core.Value{
						{"Exceptional (800+)", int64(15), float64(20.0)},
						{"No Score", int64(0), nil},
					},
				},
			},
			{
				ID:    "aov",
				Title: "Term Selection Dropoff by Order Value",
				Table: funnel.Table{
					Columns: []string{"AOV Bucket", "Dropoff %"},
					Rows: [][]core.Value{
						{"a. <$150", float64(33.3)},
					},
				},
				Heatmap: &funnel.Heatmap{
					Title:     "FICO x AOV Dropoff Matrix",
					RowLabels: []string{"High FICO (740+)"},
					ColLabels: []string{"<$150", "$1000+"},
					Cells:     [][]*float64{{ptr(12.5), nil}},
				},
			},
		},
	}
}

func ptr(v float64) *float64 { return &v }

func TestRenderReportTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, reportPage(), "table"))
	out := buf.String()

	assert.Contains(t, out, "Overall Dropoff: 41.0%")
	assert.Contains(t, out, "FICO BUCKET")
	assert.Contains(t, out, "Exceptional (800+)")
	assert.Contains(t, out, "NULL", "null dropoff prints as NULL, not zero")
	assert.Contains(t, out, "FICO x AOV Dropoff Matrix")
	assert.Contains(t, out, "12.5%")
	assert.Contains(t, out, "n/a", "empty heatmap cell prints as n/a")
}

func TestRenderReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, reportPage(), "json"))

	var page funnel.Page
	require.NoError(t, json.Unmarshal(buf.Bytes(), &page))
	assert.Equal(t, float64(105), page.Summary.Approved)
	assert.Len(t, page.Tabs, 2)
}

func TestRenderReportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, reportPage(), "csv"))
	out := buf.String()

	assert.Contains(t, out, "# Term Selection Dropoff by FICO Score")
	assert.Contains(t, out, "FICO Bucket,Approved,Dropoff %")
	assert.Contains(t, out, "Exceptional (800+),15,20.00")
	assert.Contains(t, out, "No Score,0,NULL")
}

func TestRenderReportUnknownFormat(t *testing.T) {
	err := renderReport(&bytes.Buffer{}, reportPage(), "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestEscapeCSV(t *testing.T) {
	assert.Equal(t, "plain", escapeCSV("plain"))
	assert.Equal(t, `"a,b"`, escapeCSV("a,b"))
	assert.Equal(t, `"say ""hi"""`, escapeCSV(`say "hi"`))
}

func TestRefreshCommandHitsServer(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cmd := NewRefreshCommand()
	cmd.SetArgs([]string{"--addr", srv.URL})
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "/refresh", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Contains(t, out.String(), "Refresh requested")
}

func TestRefreshCommandReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cmd := NewRefreshCommand()
	cmd.SetArgs([]string{"--addr", srv.URL})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "returned 500")
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "2026-08-30", "abc1234")
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, "funnelboard v1.2.3", lines[0])
	assert.Contains(t, out.String(), "abc1234")
}
