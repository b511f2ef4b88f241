package config

import (
	"fmt"

	"github.com/dashgen-org/dashgen/dataset"
)

// ============================================================================
// AUTO-CONFIGURATION — Column-Type Heuristics
// ============================================================================
// Suggest inspects the table's column types and cardinalities and derives
// metrics, charts, and filters deterministically. Each suggestion kind is
// independent; the heuristics bound the output by keyword matching and
// cardinality thresholds (Policy) so a near-unique identifier column never
// spawns a 500-entry categorical filter.
// ============================================================================

// Suggest generates a full Dashboard configuration from a table. Table
// column order drives suggestion order throughout.
func Suggest(t *dataset.Table, p Policy) *Dashboard {
	return &Dashboard{
		Title:         "Data Dashboard",
		Description:   fmt.Sprintf("Automatically generated overview of %d records", t.NumRows()),
		Metrics:       SuggestMetrics(t, p),
		Charts:        SuggestCharts(t, p),
		Filters:       SuggestFilters(t, p),
		Style:         DefaultStyle(),
		AutoConfigure: true,
	}
}

// SuggestMetrics proposes metric cards for the first few numeric columns.
// Columns whose name suggests a ratio aggregate by mean; the rest sum, and
// each summed column also gets a companion mean metric.
func SuggestMetrics(t *dataset.Table, p Policy) []MetricSpec {
	numeric := t.ColumnsOfKind(dataset.KindNumeric)
	if len(numeric) > p.MaxMetricColumns {
		numeric = numeric[:p.MaxMetricColumns]
	}

	var metrics []MetricSpec
	for _, col := range numeric {
		label := dataset.DisplayName(col)
		if matchesKeyword(col, p.MeanKeywords) {
			metrics = append(metrics, MetricSpec{
				Column:      col,
				Label:       "Average " + label,
				Aggregation: AggMean,
			})
			continue
		}
		metrics = append(metrics,
			MetricSpec{Column: col, Label: "Total " + label, Aggregation: AggSum},
			MetricSpec{Column: col, Label: "Average " + label, Aggregation: AggMean},
		)
	}
	return metrics
}

// SuggestCharts proposes charts from datetime×numeric, categorical×numeric,
// and numeric×numeric column pairings.
func SuggestCharts(t *dataset.Table, p Policy) []ChartSpec {
	datetime := t.ColumnsOfKind(dataset.KindDatetime)
	categorical := t.ColumnsOfKind(dataset.KindCategorical)
	numeric := t.ColumnsOfKind(dataset.KindNumeric)

	var charts []ChartSpec

	// Trend lines: first datetime column × first few numeric columns.
	if len(datetime) > 0 {
		trendNumeric := numeric
		if len(trendNumeric) > p.MaxTrendNumeric {
			trendNumeric = trendNumeric[:p.MaxTrendNumeric]
		}
		for _, y := range trendNumeric {
			charts = append(charts, ChartSpec{
				Kind:  ChartLine,
				Title: fmt.Sprintf("%s Over Time", dataset.DisplayName(y)),
				X:     datetime[0],
				Y:     y,
			})
		}
	}

	// Category breakdowns: bar always, pie only for low-cardinality columns.
	cats := categorical
	if len(cats) > p.MaxBarCategorical {
		cats = cats[:p.MaxBarCategorical]
	}
	nums := numeric
	if len(nums) > p.MaxBarNumeric {
		nums = nums[:p.MaxBarNumeric]
	}
	for _, x := range cats {
		for _, y := range nums {
			charts = append(charts, ChartSpec{
				Kind:  ChartBar,
				Title: fmt.Sprintf("%s by %s", dataset.DisplayName(y), dataset.DisplayName(x)),
				X:     x,
				Y:     y,
			})
			if t.DistinctCount(x) <= p.PieMaxDistinct {
				charts = append(charts, ChartSpec{
					Kind:  ChartPie,
					Title: fmt.Sprintf("%s Distribution by Category", dataset.DisplayName(y)),
					X:     x,
					Y:     y,
				})
			}
		}
	}

	// Relationship: exactly one scatter over the first two numeric columns.
	if len(numeric) >= 2 {
		charts = append(charts, ChartSpec{
			Kind: ChartScatter,
			Title: fmt.Sprintf("Relationship between %s and %s",
				dataset.DisplayName(numeric[0]), dataset.DisplayName(numeric[1])),
			X: numeric[0],
			Y: numeric[1],
		})
	}

	return charts
}

// SuggestFilters proposes filters: a date range per datetime column, a
// categorical filter per low-cardinality categorical column, and a numeric
// range for spread-out numeric columns whose name suggests a quantity.
func SuggestFilters(t *dataset.Table, p Policy) []FilterSpec {
	var filters []FilterSpec

	for _, col := range t.ColumnsOfKind(dataset.KindDatetime) {
		filters = append(filters, FilterSpec{
			Kind:   FilterDateRange,
			Column: col,
			Label:  dataset.DisplayName(col),
		})
	}

	for _, col := range t.ColumnsOfKind(dataset.KindCategorical) {
		if t.DistinctCount(col) <= p.CategoricalFilterMaxDistinct {
			filters = append(filters, FilterSpec{
				Kind:   FilterCategorical,
				Column: col,
				Label:  dataset.DisplayName(col),
			})
		}
	}

	for _, col := range t.ColumnsOfKind(dataset.KindNumeric) {
		if t.DistinctCount(col) > p.NumericFilterMinDistinct && matchesKeyword(col, p.RangeKeywords) {
			filters = append(filters, FilterSpec{
				Kind:   FilterNumericRange,
				Column: col,
				Label:  dataset.DisplayName(col),
			})
		}
	}

	return filters
}

// Merge fills the empty sections of a caller-supplied configuration with
// suggestions. Sections the caller populated are kept untouched; suggestion
// kinds are independent of each other.
func Merge(d *Dashboard, suggested *Dashboard) *Dashboard {
	out := *d
	if out.Title == "" {
		out.Title = suggested.Title
	}
	if out.Description == "" {
		out.Description = suggested.Description
	}
	if len(out.Metrics) == 0 {
		out.Metrics = suggested.Metrics
	}
	if len(out.Charts) == 0 {
		out.Charts = suggested.Charts
	}
	if len(out.Filters) == 0 {
		out.Filters = suggested.Filters
	}
	return &out
}
