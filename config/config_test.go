package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashgen-org/dashgen/dataset"
)

// salesTable builds the Date/Region/Sales table used across suggestion
// tests: a datetime column, a 4-value categorical column, and a numeric
// column.
func salesTable(t *testing.T) *dataset.Table {
	t.Helper()
	csv := []byte(`Date,Region,Sales
2026-01-05,North,1200.50
2026-01-12,South,980.00
2026-02-02,East,1500.25
2026-02-15,West,700.00
2026-03-01,North,1100.75
`)
	table, err := dataset.Load(csv, dataset.FormatCSV)
	require.NoError(t, err)
	return table
}

// tableWithDistinct builds a single categorical column with exactly n
// distinct values, plus one numeric column.
func tableWithDistinct(t *testing.T, n int) *dataset.Table {
	t.Helper()
	var b strings.Builder
	b.WriteString("Category,Amount\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "cat_%03d,%d\n", i, i*10)
	}
	table, err := dataset.Load([]byte(b.String()), dataset.FormatCSV)
	require.NoError(t, err)
	return table
}

func TestSuggestScenario(t *testing.T) {
	d := Suggest(salesTable(t), DefaultPolicy())

	var lines, bars, pies, scatters []ChartSpec
	for _, c := range d.Charts {
		switch c.Kind {
		case ChartLine:
			lines = append(lines, c)
		case ChartBar:
			bars = append(bars, c)
		case ChartPie:
			pies = append(pies, c)
		case ChartScatter:
			scatters = append(scatters, c)
		}
	}

	require.Len(t, lines, 1)
	assert.Equal(t, "Sales Over Time", lines[0].Title)
	require.Len(t, bars, 1)
	assert.Equal(t, "Sales by Region", bars[0].Title)
	require.Len(t, pies, 1, "Region has 4 distinct values, pie expected")
	assert.Equal(t, "Sales Distribution by Category", pies[0].Title)
	assert.Empty(t, scatters, "only one numeric column")

	labels := make(map[string]Aggregation)
	for _, m := range d.Metrics {
		labels[m.Label] = m.Aggregation
	}
	assert.Equal(t, AggSum, labels["Total Sales"])
	assert.Equal(t, AggMean, labels["Average Sales"])

	kinds := make(map[FilterKind][]string)
	for _, f := range d.Filters {
		kinds[f.Kind] = append(kinds[f.Kind], f.Column)
	}
	assert.Equal(t, []string{"Date"}, kinds[FilterDateRange])
	assert.Equal(t, []string{"Region"}, kinds[FilterCategorical])
}

func TestSuggestMetricsRatioColumns(t *testing.T) {
	csv := []byte("conversion_rate,revenue\n0.12,100\n0.15,200\n")
	table, err := dataset.Load(csv, dataset.FormatCSV)
	require.NoError(t, err)

	metrics := SuggestMetrics(table, DefaultPolicy())
	require.Len(t, metrics, 3)
	assert.Equal(t, "Average Conversion Rate", metrics[0].Label)
	assert.Equal(t, AggMean, metrics[0].Aggregation)
	assert.Equal(t, "Total Revenue", metrics[1].Label)
	assert.Equal(t, "Average Revenue", metrics[2].Label)
}

func TestSuggestMetricsCapsAtEight(t *testing.T) {
	csv := []byte("a,b,c,d,e,f\n1,2,3,4,5,6\n7,8,9,10,11,12\n")
	table, err := dataset.Load(csv, dataset.FormatCSV)
	require.NoError(t, err)

	metrics := SuggestMetrics(table, DefaultPolicy())
	assert.Len(t, metrics, 8, "first 4 numeric columns, sum+mean each")
}

func TestCategoricalFilterBoundary(t *testing.T) {
	p := DefaultPolicy()

	at := SuggestFilters(tableWithDistinct(t, 30), p)
	var cats []FilterSpec
	for _, f := range at {
		if f.Kind == FilterCategorical {
			cats = append(cats, f)
		}
	}
	require.Len(t, cats, 1, "exactly 30 distinct values is included")

	over := SuggestFilters(tableWithDistinct(t, 31), p)
	for _, f := range over {
		assert.NotEqual(t, FilterCategorical, f.Kind, "31 distinct values is excluded")
	}
}

func TestPieChartBoundary(t *testing.T) {
	p := DefaultPolicy()

	hasPie := func(charts []ChartSpec) bool {
		for _, c := range charts {
			if c.Kind == ChartPie {
				return true
			}
		}
		return false
	}

	assert.True(t, hasPie(SuggestCharts(tableWithDistinct(t, 10), p)))
	assert.False(t, hasPie(SuggestCharts(tableWithDistinct(t, 11), p)))
}

func TestNumericRangeFilterKeywords(t *testing.T) {
	csv := []byte("price,widget\n1,a\n2,b\n3,c\n4,d\n5,e\n6,f\n")
	table, err := dataset.Load(csv, dataset.FormatCSV)
	require.NoError(t, err)

	filters := SuggestFilters(table, DefaultPolicy())
	require.Len(t, filters, 2) // numeric_range on price + categorical on widget
	var found bool
	for _, f := range filters {
		if f.Kind == FilterNumericRange {
			assert.Equal(t, "price", f.Column)
			found = true
		}
	}
	assert.True(t, found, "price has 6 distinct values and a range keyword")

	// 5 distinct values is not strictly greater than the bound.
	csv5 := []byte("price,widget\n1,a\n2,b\n3,c\n4,d\n5,e\n")
	table5, err := dataset.Load(csv5, dataset.FormatCSV)
	require.NoError(t, err)
	for _, f := range SuggestFilters(table5, DefaultPolicy()) {
		assert.NotEqual(t, FilterNumericRange, f.Kind)
	}
}

func TestNormalizeRules(t *testing.T) {
	t.Run("bare string metric upgrades", func(t *testing.T) {
		d, err := Normalize(map[string]any{
			"title":   "T",
			"metrics": []any{"sales"},
		})
		require.NoError(t, err)
		require.Len(t, d.Metrics, 1)
		assert.Equal(t, MetricSpec{Column: "sales", Label: "sales", Aggregation: AggSum}, d.Metrics[0])
	})

	t.Run("metric missing column fails", func(t *testing.T) {
		_, err := Normalize(map[string]any{
			"title":   "T",
			"metrics": []any{map[string]any{"label": "x"}},
		})
		var ice *InvalidConfigError
		require.ErrorAs(t, err, &ice)
	})

	t.Run("chart missing type defaults to bar", func(t *testing.T) {
		d, err := Normalize(map[string]any{
			"title":  "T",
			"charts": []any{map[string]any{"x": "a", "y": "b"}},
		})
		require.NoError(t, err)
		assert.Equal(t, ChartBar, d.Charts[0].Kind)
	})

	t.Run("chart missing x or y fails", func(t *testing.T) {
		_, err := Normalize(map[string]any{
			"title":  "T",
			"charts": []any{map[string]any{"type": "line", "x": "a"}},
		})
		var ice *InvalidConfigError
		require.ErrorAs(t, err, &ice)
	})

	t.Run("filter missing type defaults to categorical", func(t *testing.T) {
		d, err := Normalize(map[string]any{
			"title":   "T",
			"filters": []any{map[string]any{"column": "region"}},
		})
		require.NoError(t, err)
		assert.Equal(t, FilterCategorical, d.Filters[0].Kind)
	})

	t.Run("filter missing column fails", func(t *testing.T) {
		_, err := Normalize(map[string]any{
			"title":   "T",
			"filters": []any{map[string]any{"type": "categorical"}},
		})
		var ice *InvalidConfigError
		require.ErrorAs(t, err, &ice)
	})

	t.Run("auto_configure defaults on", func(t *testing.T) {
		d, err := Normalize(map[string]any{"title": "T"})
		require.NoError(t, err)
		assert.True(t, d.AutoConfigure)

		d, err = Normalize(map[string]any{"title": "T", "auto_configure": false})
		require.NoError(t, err)
		assert.False(t, d.AutoConfigure)
	})
}

func TestValidateEmptyTitle(t *testing.T) {
	_, err := Validate(&Dashboard{})
	var ice *InvalidConfigError
	require.ErrorAs(t, err, &ice)
	assert.Contains(t, ice.Reason, "title")
}

func TestValidateIdempotent(t *testing.T) {
	d := &Dashboard{
		Title: "Quarterly Review",
		Metrics: []MetricSpec{
			{Column: "sales"},
			{Column: "conversion_rate", Aggregation: AggMean},
		},
		Charts: []ChartSpec{
			{X: "region", Y: "sales"},
			{Kind: ChartLine, Title: "Trend", X: "date", Y: "sales"},
		},
		Filters: []FilterSpec{{Column: "region"}},
	}

	once, err := Validate(d)
	require.NoError(t, err)
	twice, err := Validate(once)
	require.NoError(t, err)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Validate is not idempotent (-once +twice):\n%s", diff)
	}

	// Defaults were applied on the first pass.
	assert.Equal(t, "Sales", once.Metrics[0].Label)
	assert.Equal(t, AggSum, once.Metrics[0].Aggregation)
	assert.Equal(t, ChartBar, once.Charts[0].Kind)
	assert.Equal(t, "Sales by Region", once.Charts[0].Title)
	assert.Equal(t, FilterCategorical, once.Filters[0].Kind)
	assert.Equal(t, DefaultStyle(), once.Style)
}

func TestPolicyOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.toml")
	require.NoError(t, os.WriteFile(path, []byte("pie_max_distinct = 4\nmean_keywords = [\"pct\"]\n"), 0o644))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, 4, p.PieMaxDistinct)
	assert.Equal(t, []string{"pct"}, p.MeanKeywords)
	// Untouched keys keep their defaults.
	assert.Equal(t, 30, p.CategoricalFilterMaxDistinct)
	assert.Equal(t, DefaultPolicy().RangeKeywords, p.RangeKeywords)
}
