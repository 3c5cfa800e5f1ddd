package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/meridian-data/funnelboard/internal/funnel"
	"github.com/meridian-data/funnelboard/pkg/core"
)

var pageTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"cell":      formatCell,
	"rate":      formatRate,
	"heatStyle": heatStyle,
	"color":     barColor,
}).Parse(pageHTML))

// pageView is the template model: page content plus chart geometry
// precomputed server-side so the page needs no charting script.
type pageView struct {
	Title       string
	Source      string
	RefreshedAt string
	Summary     funnel.Summary
	Tabs        []tabView
	Error       string
}

type tabView struct {
	ID      string
	Title   string
	Chart   chartView
	Table   funnel.Table
	Heatmap *funnel.Heatmap
}

type chartView struct {
	Stacked bool
	Legend  []string
	Groups  []chartGroup
}

type chartGroup struct {
	Label string
	Bars  []chartBar
}

type chartBar struct {
	Name     string
	Display  string
	WidthPct float64
	ColorIdx int
}

var barPalette = []string{"#4c78a8", "#f58518", "#54a24b", "#e45756"}

func barColor(idx int) template.CSS {
	return template.CSS(barPalette[idx%len(barPalette)])
}

func buildPageView(page *funnel.Page) pageView {
	pv := pageView{
		Title:       page.Title,
		Source:      page.Source,
		RefreshedAt: formatTime(page.RefreshedAt),
		Summary:     page.Summary,
	}
	for _, tab := range page.Tabs {
		pv.Tabs = append(pv.Tabs, tabView{
			ID:      tab.ID,
			Title:   tab.Title,
			Chart:   buildChartView(tab.Chart),
			Table:   tab.Table,
			Heatmap: tab.Heatmap,
		})
	}
	return pv
}

// buildChartView scales bar widths against the chart's largest value so
// the longest bar always spans the track.
func buildChartView(chart funnel.Chart) chartView {
	cv := chartView{Stacked: chart.Kind == "stacked"}
	if len(chart.Series) > 1 {
		for _, s := range chart.Series {
			cv.Legend = append(cv.Legend, s.Name)
		}
	}

	max := 0.0
	if cv.Stacked {
		for i := range chart.Labels {
			sum := 0.0
			for _, s := range chart.Series {
				if i < len(s.Values) && s.Values[i] != nil {
					sum += *s.Values[i]
				}
			}
			if sum > max {
				max = sum
			}
		}
	} else {
		for _, s := range chart.Series {
			for _, v := range s.Values {
				if v != nil && *v > max {
					max = *v
				}
			}
		}
	}

	for i, label := range chart.Labels {
		group := chartGroup{Label: label}
		for si, s := range chart.Series {
			bar := chartBar{Name: s.Name, Display: "n/a", ColorIdx: si % len(barPalette)}
			if i < len(s.Values) && s.Values[i] != nil {
				v := *s.Values[i]
				bar.Display = fmt.Sprintf("%.1f", v)
				if max > 0 {
					bar.WidthPct = v / max * 100
				}
			}
			group.Bars = append(group.Bars, bar)
		}
		cv.Groups = append(cv.Groups, group)
	}
	return cv
}

// renderPage renders the full dashboard page.
func renderPage(page *funnel.Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTmpl.ExecuteTemplate(&buf, "page", buildPageView(page)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderBoard renders only the patchable board fragment, for SSE updates.
func renderBoard(page *funnel.Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTmpl.ExecuteTemplate(&buf, "board", buildPageView(page)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderErrorPage renders the top-level error boundary.
func renderErrorPage(renderErr error) ([]byte, error) {
	var buf bytes.Buffer
	pv := pageView{
		Title:       "Checkout Funnel Analytics",
		RefreshedAt: "n/a",
		Error:       renderErr.Error(),
	}
	if err := pageTmpl.ExecuteTemplate(&buf, "page", pv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCell(v core.Value) string {
	switch x := v.(type) {
	case nil:
		return "—"
	case float64:
		// Rates arrive pre-rounded to two decimals; keep them verbatim.
		return fmt.Sprintf("%.2f", x)
	case int64:
		return fmt.Sprintf("%d", x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func formatRate(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

// heatStyle maps a dropoff percentage onto a white-to-red ramp.
func heatStyle(v *float64) template.CSS {
	if v == nil {
		return "background:#f4f4f4;color:#999"
	}
	t := *v / 100
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	g := int(235 - t*160)
	fg := "#222"
	if t > 0.6 {
		fg = "#fff"
	}
	return template.CSS(fmt.Sprintf("background:rgb(225,%d,%d);color:%s", g, g, fg))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

const pageHTML = `{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body{font-family:-apple-system,"Segoe UI",Helvetica,Arial,sans-serif;margin:0;background:#fafafa;color:#222}
.wrap{max-width:1100px;margin:0 auto;padding:24px}
h1{font-size:22px;margin:0 0 4px}
.sub{color:#777;font-size:13px;margin-bottom:20px}
.cards{display:flex;gap:16px;margin-bottom:24px}
.card{flex:1;background:#fff;border:1px solid #e3e3e3;border-radius:6px;padding:14px 16px}
.card .label{font-size:12px;color:#777;text-transform:uppercase}
.card .value{font-size:24px;font-weight:600;margin-top:4px}
.tabs input[type=radio]{display:none}
.tabs label{display:inline-block;padding:8px 14px;cursor:pointer;border-bottom:2px solid transparent;font-size:14px;color:#555}
.tabs input:checked+label{border-color:#4c78a8;color:#222;font-weight:600}
.panel{display:none;background:#fff;border:1px solid #e3e3e3;border-radius:6px;padding:18px;margin-top:-1px}
{{range .Tabs}}#tab-{{.ID}}:checked ~ #panel-{{.ID}}{display:block}
{{end}}
table{border-collapse:collapse;width:100%;margin-top:16px;font-size:13px}
th,td{border:1px solid #e3e3e3;padding:6px 10px;text-align:left}
th{background:#f4f4f4}
.chart{margin:8px 0}
.cgroup{margin:6px 0}
.clabel{font-size:12px;color:#555;margin-bottom:2px}
.track{background:#eee;border-radius:3px;height:18px;margin:2px 0;white-space:nowrap}
.bar{height:100%;border-radius:3px;display:inline-block;vertical-align:top}
.bval{font-size:11px;color:#444;margin-left:6px}
.legend{font-size:12px;color:#555;margin-bottom:8px}
.dot{display:inline-block;width:10px;height:10px;border-radius:2px;margin:0 4px 0 12px;vertical-align:middle}
.refresh{float:right;background:#4c78a8;color:#fff;border:0;border-radius:4px;padding:8px 14px;cursor:pointer;font-size:13px}
.refresh:hover{background:#3b6490}
.errbox{background:#fdecea;border:1px solid #e45756;border-radius:6px;padding:16px;color:#8a1f1f}
footer{margin-top:24px;font-size:12px;color:#999}
</style>
</head>
<body>
<div class="wrap" data-on-load="@get('/updates')">
{{template "board" .}}
</div>
</body>
</html>{{end}}

{{define "board"}}<div id="board">
<button class="refresh" data-on-click="@post('/refresh')">Refresh data</button>
<h1>{{.Title}}</h1>
<div class="sub">Source: {{.Source}} &middot; Last 30 days &middot; Refreshed {{.RefreshedAt}}</div>
{{if .Error}}
<div class="errbox"><strong>Dashboard unavailable.</strong><br>{{.Error}}</div>
{{else}}
<div class="cards">
<div class="card"><div class="label">Total Approved</div><div class="value">{{printf "%.0f" .Summary.Approved}}</div></div>
<div class="card"><div class="label">Selected Terms</div><div class="value">{{printf "%.0f" .Summary.TermSelected}}</div></div>
<div class="card"><div class="label">Dropped Off</div><div class="value">{{printf "%.0f" .Summary.DroppedOff}}</div></div>
<div class="card"><div class="label">Overall Dropoff</div><div class="value">{{rate .Summary.OverallDropoffPct}}</div></div>
</div>
<div class="tabs">
{{range $i, $t := .Tabs}}<input type="radio" name="tab" id="tab-{{$t.ID}}"{{if eq $i 0}} checked{{end}}><label for="tab-{{$t.ID}}">{{$t.Title}}</label>
{{end}}
{{range .Tabs}}
<div class="panel" id="panel-{{.ID}}">
{{with .Chart}}
{{if .Legend}}<div class="legend">{{range $si, $n := .Legend}}<span class="dot" style="background:{{color $si}}"></span>{{$n}}{{end}}</div>{{end}}
<div class="chart">
{{$stacked := .Stacked}}
{{range .Groups}}<div class="cgroup"><div class="clabel">{{.Label}}</div>
{{if $stacked}}<div class="track">{{range .Bars}}<span class="bar" style="width:{{printf "%.2f" .WidthPct}}%;background:{{color .ColorIdx}}" title="{{.Name}}: {{.Display}}"></span>{{end}}</div>
{{else}}{{range .Bars}}<div class="track"><span class="bar" style="width:{{printf "%.2f" .WidthPct}}%;background:{{color .ColorIdx}}"></span><span class="bval">{{.Display}}</span></div>{{end}}
{{end}}</div>
{{end}}
</div>
{{end}}
<table><thead><tr>{{range .Table.Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>{{range .Table.Rows}}<tr>{{range .}}<td>{{cell .}}</td>{{end}}</tr>{{end}}</tbody></table>
{{with $hm := .Heatmap}}
<h3>{{$hm.Title}}</h3>
<table><thead><tr><th></th>{{range $hm.ColLabels}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>{{range $r, $row := $hm.Cells}}<tr><th>{{index $hm.RowLabels $r}}</th>{{range $row}}<td style="{{heatStyle .}}">{{rate .}}</td>{{end}}</tr>{{end}}</tbody></table>
{{end}}
</div>
{{end}}
</div>
{{end}}
<footer>Dropoff % is null where a bucket has no approved checkouts.</footer>
</div>{{end}}
`
