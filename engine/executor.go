package engine

import (
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/dashgen-org/dashgen/config"
	"github.com/dashgen-org/dashgen/dataset"
	"github.com/dashgen-org/dashgen/render"
)

// ============================================================================
// BUILD PIPELINE — Raw Bytes to Rendered Dashboard
// ============================================================================
// Entry point: Build(data, raw, opts...)
//
// Pipeline:
//   1. Decode bytes into a typed table
//   2. Normalize the raw configuration (nil means fully automatic)
//   3. Fill empty sections from column-type heuristics when auto-configure
//      is on
//   4. Validate and default the assembled configuration
//   5. Apply filters → row view
//   6. Compute metrics and render charts; failures become warnings and
//      visible placeholders, never hard errors
//   7. Compose the HTML document
//
// All computation is local. The engine never performs network I/O.
// ============================================================================

// idAlphabet matches the character set used for dashboard identifiers.
const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Dashboard is the complete build output.
type Dashboard struct {
	ID       string
	Config   *config.Dashboard
	Table    *dataset.Table // filtered view the document was rendered from
	Metrics  []Metric
	Document *render.Document
	Warnings []Warning
}

// Build decodes data, resolves the configuration, and renders a dashboard
// document. A nil raw configuration builds a fully auto-configured
// dashboard. Configuration problems fail the build; per-item metric,
// chart, and filter problems degrade to warnings.
func Build(data []byte, raw map[string]any, opts ...Option) (*Dashboard, error) {
	s := applySettings(opts)
	log := s.Logger

	table, err := dataset.Load(data, s.Format)
	if err != nil {
		return nil, err
	}
	log.Info("dataset loaded",
		zap.Int("rows", table.NumRows()),
		zap.Int("columns", table.NumCols()))

	cfg := &config.Dashboard{AutoConfigure: true}
	if raw != nil {
		cfg, err = config.Normalize(raw)
		if err != nil {
			return nil, err
		}
	}
	if cfg.AutoConfigure {
		cfg = config.Merge(cfg, config.Suggest(table, s.Policy))
	}
	cfg, err = config.Validate(cfg)
	if err != nil {
		return nil, err
	}

	filtered, warnings := ApplyFilters(table, cfg.Filters, s.Values)
	log.Info("filters applied",
		zap.Int("before", table.NumRows()),
		zap.Int("after", filtered.NumRows()),
		zap.Int("filters", len(cfg.Filters)))

	metrics, metricWarnings := ComputeMetrics(filtered, cfg.Metrics)
	warnings = append(warnings, metricWarnings...)

	blocks := make([]render.Block, 0, len(cfg.Charts))
	for _, spec := range cfg.Charts {
		artifact, err := BuildChart(filtered, spec, cfg.Style.Scheme)
		if err != nil {
			warnings = append(warnings, warnf("chart", chartErrColumn(err, spec.X), "%v", err))
			blocks = append(blocks, render.Block{Title: spec.Title, Err: err.Error()})
			continue
		}
		blocks = append(blocks, render.Block{
			Title:   artifact.Title,
			Element: artifact.Element,
			Script:  artifact.Script,
		})
	}

	page := &render.Page{
		Title:       cfg.Title,
		Description: cfg.Description,
		Generated:   time.Now(),
		Records:     filtered.NumRows(),
		Style:       cfg.Style,
		Metrics:     metricCards(metrics),
		Charts:      blocks,
		Filters:     filterNotes(filtered, cfg.Filters, s.Values),
		Preview:     previewRows(filtered, 10),
		Warnings:    warningLines(warnings),
	}
	doc, err := render.Compose(page)
	if err != nil {
		return nil, err
	}

	id, err := gonanoid.Generate(idAlphabet, 8)
	if err != nil {
		return nil, fmt.Errorf("generate dashboard id: %w", err)
	}
	log.Info("dashboard built",
		zap.String("id", id),
		zap.Int("metrics", len(metrics)),
		zap.Int("charts", len(blocks)),
		zap.Int("warnings", len(warnings)))

	return &Dashboard{
		ID:       id,
		Config:   cfg,
		Table:    filtered,
		Metrics:  metrics,
		Document: doc,
		Warnings: warnings,
	}, nil
}

// ============================================================================
// PAGE ASSEMBLY HELPERS
// ============================================================================

// chartErrColumn extracts the offending column from a chart failure so the
// warning names the column that actually broke, not just the x axis.
func chartErrColumn(err error, fallback string) string {
	var cerr *ChartError
	if errors.As(err, &cerr) && cerr.Column != "" {
		return cerr.Column
	}
	return fallback
}

func metricCards(metrics []Metric) []render.MetricCard {
	cards := make([]render.MetricCard, len(metrics))
	for i, m := range metrics {
		cards[i] = render.MetricCard{Label: m.Label, Value: m.Formatted, Delta: m.Delta}
	}
	return cards
}

func warningLines(warnings []Warning) []string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return lines
}

// filterNotes summarizes each applied filter against the filtered view.
func filterNotes(t *dataset.Table, specs []config.FilterSpec, values Values) []render.FilterNote {
	notes := make([]render.FilterNote, 0, len(specs))
	for _, spec := range specs {
		label := spec.Label
		if label == "" {
			label = dataset.DisplayName(spec.Column)
		}
		notes = append(notes, render.FilterNote{
			Label:   label,
			Summary: summarizeFilter(t, spec, values[spec.Column]),
		})
	}
	return notes
}

func summarizeFilter(t *dataset.Table, spec config.FilterSpec, val Value) string {
	switch spec.Kind {
	case config.FilterDateRange:
		lo, hi, ok := t.TimeRange(spec.Column)
		if val.From != nil {
			lo = *val.From
		}
		if val.To != nil {
			hi = *val.To
		}
		if !ok && val.From == nil && val.To == nil {
			return "all dates"
		}
		return fmt.Sprintf("%s to %s", lo.Format("2006-01-02"), hi.Format("2006-01-02"))
	case config.FilterTimePeriod:
		if val.Period != "" {
			return val.Period
		}
		return "all time"
	case config.FilterCategorical, config.FilterMultiSelect:
		if n := len(val.Selected); n > 0 {
			return fmt.Sprintf("%d selected", n)
		}
		return "all values"
	case config.FilterNumericRange:
		lo, hi, ok := t.FloatRange(spec.Column)
		if val.Min != nil {
			lo = *val.Min
		}
		if val.Max != nil {
			hi = *val.Max
		}
		if !ok && val.Min == nil && val.Max == nil {
			return "full range"
		}
		return fmt.Sprintf("%s to %s", FormatNumber(lo), FormatNumber(hi))
	case config.FilterTextSearch:
		if val.Query != "" {
			return fmt.Sprintf("matching %q", val.Query)
		}
		return "no search"
	}
	return ""
}

// previewRows samples the first rows of the filtered view for the document
// footer table.
func previewRows(t *dataset.Table, limit int) *render.Preview {
	if t.NumRows() == 0 {
		return nil
	}
	n := t.NumRows()
	if n > limit {
		n = limit
	}
	cols := t.ColumnNames()
	rows := make([][]string, n)
	for row := 0; row < n; row++ {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = t.String(col, row)
		}
		rows[row] = cells
	}
	return &render.Preview{Columns: cols, Rows: rows}
}
