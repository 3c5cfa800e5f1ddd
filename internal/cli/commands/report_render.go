package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/meridian-data/funnelboard/internal/funnel"
	"github.com/meridian-data/funnelboard/pkg/core"
)

func renderReport(w io.Writer, page *funnel.Page, format string) error {
	switch format {
	case "json":
		return renderReportJSON(w, page)
	case "csv":
		return renderReportCSV(w, page)
	case "", "table":
		return renderReportTables(w, page)
	default:
		return fmt.Errorf("unknown output format %q (table, json, csv)", format)
	}
}

func renderReportTables(w io.Writer, page *funnel.Page) error {
	_, _ = fmt.Fprintf(w, "%s\nSource: %s\n\n", page.Title, page.Source)
	_, _ = fmt.Fprintf(w, "Total Approved: %.0f  Selected Terms: %.0f  Dropped Off: %.0f  Overall Dropoff: %s\n",
		page.Summary.Approved, page.Summary.TermSelected, page.Summary.DroppedOff,
		formatPct(page.Summary.OverallDropoffPct))

	for _, tab := range page.Tabs {
		_, _ = fmt.Fprintf(w, "\n%s\n", tab.Title)

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)

		headerRow := make(table.Row, len(tab.Table.Columns))
		for i, col := range tab.Table.Columns {
			headerRow[i] = col
		}
		t.AppendHeader(headerRow)

		for _, values := range tab.Table.Rows {
			row := make(table.Row, len(values))
			for i, v := range values {
				row[i] = formatReportValue(v)
			}
			t.AppendRow(row)
		}
		t.Render()
	}

	for _, tab := range page.Tabs {
		if tab.Heatmap == nil {
			continue
		}
		_, _ = fmt.Fprintf(w, "\n%s (dropoff %%)\n", tab.Heatmap.Title)

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)

		headerRow := make(table.Row, len(tab.Heatmap.ColLabels)+1)
		headerRow[0] = ""
		for i, col := range tab.Heatmap.ColLabels {
			headerRow[i+1] = col
		}
		t.AppendHeader(headerRow)

		for r, rowLabel := range tab.Heatmap.RowLabels {
			row := make(table.Row, len(tab.Heatmap.ColLabels)+1)
			row[0] = rowLabel
			for c := range tab.Heatmap.ColLabels {
				row[c+1] = formatPct(tab.Heatmap.Cells[r][c])
			}
			t.AppendRow(row)
		}
		t.Render()
	}
	return nil
}

func renderReportJSON(w io.Writer, page *funnel.Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(page)
}

func renderReportCSV(w io.Writer, page *funnel.Page) error {
	for ti, tab := range page.Tabs {
		if ti > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "# %s\n", tab.Title)
		_, _ = fmt.Fprintln(w, strings.Join(tab.Table.Columns, ","))
		for _, values := range tab.Table.Rows {
			fields := make([]string, len(values))
			for i, v := range values {
				fields[i] = escapeCSV(formatReportValue(v))
			}
			_, _ = fmt.Fprintln(w, strings.Join(fields, ","))
		}
	}
	return nil
}

func formatReportValue(v core.Value) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return fmt.Sprintf("%.2f", x)
	case int64:
		return fmt.Sprintf("%d", x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func formatPct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
