package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ============================================================================
// SUGGESTION POLICY — Tunable Heuristic Constants
// ============================================================================
// The auto-configuration thresholds and keyword lists are policy, not
// specification. They ship as defaults here and can be overridden from a
// TOML file for datasets where the stock heuristics misfire.
// ============================================================================

// Policy carries the tunable knobs of the auto-configuration engine.
type Policy struct {
	// Metrics
	MaxMetricColumns int      `toml:"max_metric_columns"` // numeric columns considered for metrics
	MeanKeywords     []string `toml:"mean_keywords"`      // column-name substrings that switch sum → mean

	// Charts
	MaxTrendNumeric   int `toml:"max_trend_numeric"`   // numeric columns paired with the first datetime column
	MaxBarCategorical int `toml:"max_bar_categorical"` // categorical columns considered for bar charts
	MaxBarNumeric     int `toml:"max_bar_numeric"`     // numeric columns considered for bar charts
	PieMaxDistinct    int `toml:"pie_max_distinct"`    // pie emitted only when categorical distinct ≤ this

	// Filters
	CategoricalFilterMaxDistinct int      `toml:"categorical_filter_max_distinct"`
	NumericFilterMinDistinct     int      `toml:"numeric_filter_min_distinct"` // strictly greater-than bound
	RangeKeywords                []string `toml:"range_keywords"`              // column-name substrings that enable numeric_range filters
}

// DefaultPolicy returns the stock heuristics. The magic numbers are carried
// over from the original generator unchanged.
func DefaultPolicy() Policy {
	return Policy{
		MaxMetricColumns:             4,
		MeanKeywords:                 []string{"rate", "ratio", "percentage", "percent"},
		MaxTrendNumeric:              3,
		MaxBarCategorical:            2,
		MaxBarNumeric:                2,
		PieMaxDistinct:               10,
		CategoricalFilterMaxDistinct: 30,
		NumericFilterMinDistinct:     5,
		RangeKeywords:                []string{"price", "cost", "amount", "age", "time", "duration", "score"},
	}
}

// LoadPolicy reads a TOML policy file, overlaying it on the defaults so a
// partial file only overrides the keys it names.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy: %w", err)
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse policy %s: %w", path, err)
	}
	return p, nil
}

// matchesKeyword reports whether the lower-cased column name contains any
// of the keywords. Consulted as a single lookup so the keyword policy stays
// in one place.
func matchesKeyword(column string, keywords []string) bool {
	name := strings.ToLower(column)
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
