package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/dashgen-org/dashgen/config"
)

// ============================================================================
// DOCUMENT COMPOSER — Assembles Cards, Charts, and Notes into One HTML Page
// ============================================================================
// The composer is deliberately dumb: it lays out whatever artifacts it is
// handed. Anything that failed upstream arrives as a Block with Err set and
// renders as a visible placeholder, so one broken chart never takes down
// the page.
// ============================================================================

// MetricCard is one pre-formatted metric for the top row.
type MetricCard struct {
	Label string
	Value string
	Delta string
}

// Block is one chart slot: either a rendered snippet or an error
// placeholder.
type Block struct {
	Title   string
	Element template.HTML
	Script  template.HTML
	Err     string
}

// FilterNote summarizes one applied filter for the sidebar strip.
type FilterNote struct {
	Label   string
	Summary string
}

// Preview is a small sample of the filtered rows.
type Preview struct {
	Columns []string
	Rows    [][]string
}

// Page is everything the composer needs to produce a document.
type Page struct {
	Title       string
	Description string
	Generated   time.Time
	Records     int
	Style       config.StyleSpec
	Metrics     []MetricCard
	Charts      []Block
	Filters     []FilterNote
	Preview     *Preview
	Warnings    []string
}

// Document is a fully rendered dashboard page.
type Document struct {
	html []byte
}

// Bytes returns the rendered HTML.
func (d *Document) Bytes() []byte { return d.html }

// WriteTo writes the rendered HTML to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.html)
	return int64(n), err
}

// Compose renders a complete standalone HTML document for the page.
//
// Layouts are structurally distinct:
//
//	standard — metric cards in a left side rail, charts stacked beside it
//	compact  — small flow-wrapped metric boxes, charts in a two-column grid
//	expanded — metric grid, every chart full width
//	grid     — metric grid, charts in a grid of Style.Columns columns
func Compose(p *Page) (*Document, error) {
	layout := p.Style.Layout
	if layout == "" {
		layout = config.LayoutStandard
	}
	cols := p.Style.Columns
	if cols < 1 {
		cols = 2
	}
	if layout == config.LayoutExpanded {
		cols = 1
	}
	view := pageView{
		Page:    p,
		Theme:   ThemeColors(p.Style.Theme),
		Columns: cols,
		Layout:  string(layout),
	}

	var buf bytes.Buffer
	if err := pageTpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("compose document: %w", err)
	}
	return &Document{html: buf.Bytes()}, nil
}

type pageView struct {
	*Page
	Theme   Colors
	Columns int
	Layout  string
}

var pageTpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"fmtdate": func(t time.Time) string { return t.Format("January 2, 2006") },
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <script src="https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"></script>
    <style>
        body {
            background: {{.Theme.Background}};
            color: {{.Theme.Text}};
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            margin: 0;
            padding: 24px;
        }
        .container { max-width: 1400px; margin: 0 auto; }
        header { margin-bottom: 24px; border-bottom: 1px solid {{.Theme.Border}}; padding-bottom: 16px; }
        h1 { margin: 0; font-size: 1.7rem; }
        .description { color: {{.Theme.Muted}}; margin-top: 6px; }

        .warnings { margin: 12px 0; }
        .warning {
            background: #FEF3C7; color: #92400E; border: 1px solid #FCD34D;
            padding: 8px 12px; border-radius: 8px; margin-bottom: 6px; font-size: 0.85rem;
        }

        .filter-strip { display: flex; flex-wrap: wrap; gap: 8px; margin: 16px 0; }
        .filter-chip {
            background: {{.Theme.Surface}}; border: 1px solid {{.Theme.Border}};
            border-radius: 999px; padding: 6px 14px; font-size: 0.8rem; color: {{.Theme.Muted}};
        }
        .filter-chip strong { color: {{.Theme.Text}}; }

        .metric-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
            gap: 16px; margin: 20px 0;
        }
        .metric-card {
            background: {{.Theme.Surface}}; border: 1px solid {{.Theme.Border}};
            border-radius: 12px; padding: 18px;
        }
        .metric-label { color: {{.Theme.Muted}}; font-size: 0.8rem; text-transform: uppercase; letter-spacing: 0.05em; }
        .metric-value { color: {{.Theme.Accent}}; font-size: 1.9rem; font-weight: 700; margin-top: 4px; }
        .metric-delta { color: {{.Theme.Muted}}; font-size: 0.8rem; margin-top: 4px; }

        .metric-flow { display: flex; flex-wrap: wrap; gap: 12px; margin: 20px 0; }
        .metric-flow .metric-card { padding: 10px 18px; }
        .metric-flow .metric-value { font-size: 1.3rem; }

        .standard-split { display: grid; grid-template-columns: 260px 1fr; gap: 16px; align-items: start; }
        .side-rail { display: flex; flex-direction: column; gap: 16px; }
        .chart-stack { display: flex; flex-direction: column; gap: 16px; }

        .chart-grid { display: grid; grid-template-columns: repeat({{.Columns}}, 1fr); gap: 16px; }
        .chart-box {
            background: {{.Theme.Surface}}; border: 1px solid {{.Theme.Border}};
            border-radius: 12px; padding: 12px; overflow: hidden;
        }
        .layout-expanded .chart-box { padding: 20px; }
        .chart-error {
            color: #B91C1C; background: #FEE2E2; border: 1px solid #FCA5A5;
            border-radius: 8px; padding: 16px; font-size: 0.9rem;
        }

        .preview { margin-top: 24px; }
        .preview h2 { font-size: 1.1rem; }
        .preview table { width: 100%; border-collapse: collapse; background: {{.Theme.Surface}}; }
        .preview th, .preview td {
            text-align: left; padding: 10px 12px; font-size: 0.85rem;
            border-bottom: 1px solid {{.Theme.Border}};
        }
        .preview th { color: {{.Theme.Muted}}; font-weight: 600; }

        footer { margin-top: 32px; color: {{.Theme.Muted}}; font-size: 0.8rem; }
    </style>
</head>
<body>
    <div class="container layout-{{.Layout}}">
        <header>
            <h1>{{.Title}}</h1>
            {{if .Description}}<div class="description">{{.Description}}</div>{{end}}
        </header>

        {{if .Warnings}}
        <div class="warnings">
            {{range .Warnings}}<div class="warning">{{.}}</div>{{end}}
        </div>
        {{end}}

        {{if .Filters}}
        <div class="filter-strip">
            {{range .Filters}}<div class="filter-chip"><strong>{{.Label}}</strong> {{.Summary}}</div>{{end}}
        </div>
        {{end}}

        {{if eq .Layout "standard"}}
        <div class="standard-split">
            <aside class="side-rail">
                {{range .Metrics}}{{template "metricCard" .}}{{end}}
            </aside>
            <main class="chart-stack">
                {{range .Charts}}{{template "chartBox" .}}{{end}}
            </main>
        </div>
        {{else}}
        {{if .Metrics}}
        <div class="{{if eq .Layout "compact"}}metric-flow{{else}}metric-grid{{end}}">
            {{range .Metrics}}{{template "metricCard" .}}{{end}}
        </div>
        {{end}}

        {{if .Charts}}
        <div class="chart-grid">
            {{range .Charts}}{{template "chartBox" .}}{{end}}
        </div>
        {{end}}
        {{end}}

        {{if .Preview}}
        <div class="preview">
            <h2>Data Preview</h2>
            <table>
                <thead>
                    <tr>{{range .Preview.Columns}}<th>{{.}}</th>{{end}}</tr>
                </thead>
                <tbody>
                    {{range .Preview.Rows}}
                    <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
                    {{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        <footer>{{.Records}} records &middot; generated on {{fmtdate .Generated}}</footer>
    </div>
</body>
</html>

{{define "metricCard"}}
            <div class="metric-card">
                <div class="metric-label">{{.Label}}</div>
                <div class="metric-value">{{.Value}}</div>
                {{if .Delta}}<div class="metric-delta">{{.Delta}}</div>{{end}}
            </div>
{{end}}

{{define "chartBox"}}
            <div class="chart-box">
                {{if .Err}}<div class="chart-error">Error generating chart: {{.Err}}</div>{{else}}{{.Element}}{{.Script}}{{end}}
            </div>
{{end}}`))
