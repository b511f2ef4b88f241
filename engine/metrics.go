package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dashgen-org/dashgen/config"
	"github.com/dashgen-org/dashgen/dataset"
)

// ============================================================================
// METRIC AGGREGATOR — Scalar Summaries over a Filtered View
// ============================================================================
// Each metric spec reduces one column of the filtered view to a single
// value, then formats it for display. Nulls are excluded from every
// aggregation; an aggregate over zero rows is 0.
// ============================================================================

// Metric is one computed metric card.
type Metric struct {
	Label     string
	Value     float64
	Formatted string
	Delta     string // optional secondary line, empty when unset
}

// ColumnError reports a metric or chart spec referencing a column the
// table cannot serve.
type ColumnError struct {
	Column string
	Reason string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q %s", e.Column, e.Reason)
}

// ComputeMetrics evaluates every metric spec against the view. Specs that
// fail become warnings; the survivors keep their configured order.
func ComputeMetrics(t *dataset.Table, specs []config.MetricSpec) ([]Metric, []Warning) {
	metrics := make([]Metric, 0, len(specs))
	var warnings []Warning
	for _, spec := range specs {
		m, err := ComputeMetric(t, spec)
		if err != nil {
			warnings = append(warnings, warnf("metric", spec.Column, "%v, metric skipped", err))
			continue
		}
		metrics = append(metrics, m)
	}
	return metrics, warnings
}

// ComputeMetric reduces one column to a formatted metric card.
func ComputeMetric(t *dataset.Table, spec config.MetricSpec) (Metric, error) {
	value, err := Aggregate(t, spec.Column, spec.Aggregation)
	if err != nil {
		return Metric{}, err
	}

	label := spec.Label
	if label == "" {
		label = dataset.DisplayName(spec.Column)
	}

	m := Metric{
		Label:     label,
		Value:     value,
		Formatted: formatMetric(value, spec.Aggregation, spec.Format),
	}
	if spec.Threshold != nil && value < *spec.Threshold {
		m.Delta = fmt.Sprintf("below %s", FormatNumber(*spec.Threshold))
	}
	if spec.DeltaColumn != "" {
		delta, err := Aggregate(t, spec.DeltaColumn, spec.Aggregation)
		if err == nil {
			deltaLabel := spec.DeltaLabel
			if deltaLabel == "" {
				deltaLabel = dataset.DisplayName(spec.DeltaColumn)
			}
			m.Delta = fmt.Sprintf("%s: %s", deltaLabel, formatMetric(delta, spec.Aggregation, spec.Format))
		}
	}
	return m, nil
}

// Aggregate reduces a column by the named aggregation, excluding nulls.
// count and unique work on any column kind; the rest require numeric.
func Aggregate(t *dataset.Table, col string, agg config.Aggregation) (float64, error) {
	if !t.HasColumn(col) {
		return 0, &ColumnError{Column: col, Reason: "not found"}
	}

	switch agg {
	case config.AggCount:
		n := 0
		for row := 0; row < t.NumRows(); row++ {
			if !t.IsNull(col, row) {
				n++
			}
		}
		return float64(n), nil
	case config.AggUnique:
		return float64(t.DistinctCount(col)), nil
	}

	c, _ := t.Column(col)
	if c.Kind != dataset.KindNumeric {
		return 0, &ColumnError{Column: col, Reason: "is not numeric"}
	}

	vals := make([]float64, 0, t.NumRows())
	for row := 0; row < t.NumRows(); row++ {
		if v, ok := t.Float(col, row); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0, nil
	}

	switch agg {
	case config.AggSum:
		return sum(vals), nil
	case config.AggMean:
		return sum(vals) / float64(len(vals)), nil
	case config.AggMin:
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return m, nil
	case config.AggMax:
		m := vals[0]
		for _, v := range vals[1:] {
			if v > m {
				m = v
			}
		}
		return m, nil
	case config.AggMedian:
		sort.Float64s(vals)
		mid := len(vals) / 2
		if len(vals)%2 == 1 {
			return vals[mid], nil
		}
		return (vals[mid-1] + vals[mid]) / 2, nil
	default:
		return sum(vals), nil
	}
}

func sum(vals []float64) float64 {
	var total float64
	for _, v := range vals {
		total += v
	}
	return total
}

// ============================================================================
// FORMATTING
// ============================================================================

// formatMetric renders an aggregated value. Counts stay exact with comma
// grouping; other aggregations abbreviate large magnitudes. An explicit
// format overrides both.
func formatMetric(v float64, agg config.Aggregation, format string) string {
	switch {
	case format == "currency":
		return "$" + FormatNumber(v)
	case format == "percent" || format == "percentage":
		return fmt.Sprintf("%.1f%%", v)
	case strings.Contains(format, "%"):
		return fmt.Sprintf(format, v)
	}
	if agg == config.AggCount || agg == config.AggUnique {
		return FormatInt(int(v))
	}
	return FormatNumber(v)
}

// FormatNumber abbreviates millions and thousands with one decimal place;
// smaller values keep comma grouping or two decimals.
func FormatNumber(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	case v == math.Trunc(v):
		return FormatInt(int(v))
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}
