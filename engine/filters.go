package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/dashgen-org/dashgen/config"
	"github.com/dashgen-org/dashgen/dataset"
)

// ============================================================================
// FILTER ENGINE — Ordered Predicates over a Table View
// ============================================================================
// Filters apply in list order and AND together: each narrows the row view
// produced by the previous one. The source Table is never mutated — every
// step yields a new row-index view. A filter referencing a missing column
// is skipped with a warning, never a hard failure.
// ============================================================================

// Value carries user-supplied state for one filter. Only the fields
// matching the filter kind are consulted.
type Value struct {
	From, To *time.Time // date_range
	Min, Max *float64   // numeric_range
	Selected []string   // categorical / multi_select
	Query    string     // text_search
	Period   string     // time_period: last_7_days, last_30_days, last_90_days, last_year
}

// Values maps filter columns to user-supplied filter state.
type Values map[string]Value

// Warning records a non-fatal failure surfaced to the caller and rendered
// inline in the document.
type Warning struct {
	Source  string // "filter", "metric", "chart"
	Column  string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %q: %s", w.Source, w.Column, w.Message)
}

func warnf(source, column, format string, args ...any) Warning {
	return Warning{Source: source, Column: column, Message: fmt.Sprintf(format, args...)}
}

// ApplyFilters narrows a table view by the given filter specs. Row count is
// monotonically non-increasing in the number of filters.
func ApplyFilters(t *dataset.Table, specs []config.FilterSpec, values Values) (*dataset.Table, []Warning) {
	view := t
	var warnings []Warning

	for _, spec := range specs {
		if !view.HasColumn(spec.Column) {
			warnings = append(warnings, warnf("filter", spec.Column, "column not found, filter skipped"))
			continue
		}
		val := values[spec.Column]

		var next *dataset.Table
		var warn *Warning
		switch spec.Kind {
		case config.FilterDateRange:
			next, warn = applyDateRange(view, spec, val)
		case config.FilterTimePeriod:
			next, warn = applyTimePeriod(view, spec, val)
		case config.FilterCategorical, config.FilterMultiSelect:
			next = applyCategorical(view, spec, val)
		case config.FilterNumericRange:
			next, warn = applyNumericRange(view, spec, val)
		case config.FilterTextSearch:
			next = applyTextSearch(view, spec, val)
		default:
			warnings = append(warnings, warnf("filter", spec.Column, "unknown filter type %q, filter skipped", spec.Kind))
			continue
		}
		if warn != nil {
			warnings = append(warnings, *warn)
			continue
		}
		if next != nil {
			view = next
		}
	}

	return view, warnings
}

// applyDateRange keeps rows whose datetime value lies in [from, to]
// inclusive; bounds default to the observed column min/max.
func applyDateRange(t *dataset.Table, spec config.FilterSpec, val Value) (*dataset.Table, *Warning) {
	if !t.CoerceDatetime(spec.Column) {
		w := warnf("filter", spec.Column, "column is not datetime, filter skipped")
		return nil, &w
	}

	lo, hi, ok := t.TimeRange(spec.Column)
	if !ok {
		return t, nil
	}
	if val.From != nil {
		lo = *val.From
	}
	if val.To != nil {
		hi = *val.To
	}

	return keepRows(t, func(row int) bool {
		ts, ok := t.Time(spec.Column, row)
		return ok && !ts.Before(lo) && !ts.After(hi)
	}), nil
}

// periodDays maps named relative periods to day spans, measured back from
// the latest observed value.
var periodDays = map[string]int{
	"last_7_days":  7,
	"last_30_days": 30,
	"last_90_days": 90,
	"last_year":    365,
}

// applyTimePeriod resolves a named period against the column's latest
// observed value, then applies it as a date range.
func applyTimePeriod(t *dataset.Table, spec config.FilterSpec, val Value) (*dataset.Table, *Warning) {
	period := val.Period
	if period == "" {
		if s, ok := spec.Default.(string); ok {
			period = s
		}
	}
	if period == "" || period == "all" {
		return t, nil
	}
	days, ok := periodDays[period]
	if !ok {
		w := warnf("filter", spec.Column, "unknown time period %q, filter skipped", period)
		return nil, &w
	}
	if !t.CoerceDatetime(spec.Column) {
		w := warnf("filter", spec.Column, "column is not datetime, filter skipped")
		return nil, &w
	}
	_, latest, ok := t.TimeRange(spec.Column)
	if !ok {
		return t, nil
	}
	cutoff := latest.AddDate(0, 0, -days)

	return keepRows(t, func(row int) bool {
		ts, ok := t.Time(spec.Column, row)
		return ok && !ts.Before(cutoff)
	}), nil
}

// applyCategorical keeps rows whose value is in the selected set. With no
// selection the set defaults to all observed values, which is a no-op. A
// fixed options list bounds the selection: no selection means the whole
// list, and selections outside it are dropped.
func applyCategorical(t *dataset.Table, spec config.FilterSpec, val Value) *dataset.Table {
	selected := val.Selected
	if len(selected) == 0 {
		selected = defaultSelection(spec)
	}
	if len(spec.Options) > 0 {
		selected = constrainToOptions(selected, spec.Options)
	} else if len(selected) == 0 {
		return t // all observed values, nothing to narrow
	}

	set := toLowerSet(selected)
	return keepRows(t, func(row int) bool {
		return set[strings.ToLower(t.String(spec.Column, row))]
	})
}

func constrainToOptions(selected, options []string) []string {
	if len(selected) == 0 {
		return options
	}
	allowed := toLowerSet(options)
	var out []string
	for _, s := range selected {
		if allowed[strings.ToLower(s)] {
			out = append(out, s)
		}
	}
	return out
}

func defaultSelection(spec config.FilterSpec) []string {
	switch v := spec.Default.(type) {
	case []string:
		return v
	case []any:
		var out []string
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}

// applyNumericRange keeps rows in [min, max] inclusive; bounds default to
// the observed column min/max. Nulls never match a range.
func applyNumericRange(t *dataset.Table, spec config.FilterSpec, val Value) (*dataset.Table, *Warning) {
	col, _ := t.Column(spec.Column)
	if col.Kind != dataset.KindNumeric {
		w := warnf("filter", spec.Column, "column is not numeric, filter skipped")
		return nil, &w
	}
	lo, hi, ok := t.FloatRange(spec.Column)
	if !ok {
		return t, nil
	}
	if val.Min != nil {
		lo = *val.Min
	}
	if val.Max != nil {
		hi = *val.Max
	}

	return keepRows(t, func(row int) bool {
		v, ok := t.Float(spec.Column, row)
		return ok && v >= lo && v <= hi
	}), nil
}

// applyTextSearch keeps rows whose value contains the query, case-folded.
// An empty query is a no-op.
func applyTextSearch(t *dataset.Table, spec config.FilterSpec, val Value) *dataset.Table {
	query := val.Query
	if query == "" {
		if s, ok := spec.Default.(string); ok {
			query = s
		}
	}
	if query == "" {
		return t
	}
	q := strings.ToLower(query)
	return keepRows(t, func(row int) bool {
		return strings.Contains(strings.ToLower(t.String(spec.Column, row)), q)
	})
}

// keepRows selects the view rows matching the predicate.
func keepRows(t *dataset.Table, keep func(row int) bool) *dataset.Table {
	n := t.NumRows()
	rows := make([]int, 0, n)
	for row := 0; row < n; row++ {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return t.Select(rows)
}

// toLowerSet converts a string slice to a lowercase lookup set.
func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
