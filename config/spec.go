package config

// ============================================================================
// DECLARATIVE SPECS — Strongly-Typed Dashboard Configuration
// ============================================================================
// The raw configuration arrives as a loosely-typed map (JSON or YAML).
// Normalize (validate.go) converts it into these records at the boundary so
// the rest of the pipeline never re-checks optionality.
// ============================================================================

// Aggregation names a scalar aggregate over a column.
type Aggregation string

const (
	AggSum    Aggregation = "sum"
	AggMean   Aggregation = "mean"
	AggCount  Aggregation = "count"
	AggMin    Aggregation = "min"
	AggMax    Aggregation = "max"
	AggMedian Aggregation = "median"
	AggUnique Aggregation = "unique"
)

// KnownAggregation reports whether a is one of the supported aggregations.
func KnownAggregation(a Aggregation) bool {
	switch a {
	case AggSum, AggMean, AggCount, AggMin, AggMax, AggMedian, AggUnique:
		return true
	}
	return false
}

// ChartKind names a chart type.
type ChartKind string

const (
	ChartBar       ChartKind = "bar"
	ChartLine      ChartKind = "line"
	ChartPie       ChartKind = "pie"
	ChartScatter   ChartKind = "scatter"
	ChartArea      ChartKind = "area"
	ChartHeatmap   ChartKind = "heatmap"
	ChartHistogram ChartKind = "histogram"
	ChartBox       ChartKind = "box"
)

// FilterKind names a filter predicate type.
type FilterKind string

const (
	FilterDateRange    FilterKind = "date_range"
	FilterCategorical  FilterKind = "categorical"
	FilterNumericRange FilterKind = "numeric_range"
	FilterTextSearch   FilterKind = "text_search"
	FilterTimePeriod   FilterKind = "time_period"
	FilterMultiSelect  FilterKind = "multi_select"
)

// Theme names a styling bundle for the composed document.
type Theme string

const (
	ThemeDefault  Theme = "default"
	ThemeDark     Theme = "dark"
	ThemeLight    Theme = "light"
	ThemeColorful Theme = "colorful"
)

// Layout names a document layout.
type Layout string

const (
	LayoutStandard Layout = "standard"
	LayoutCompact  Layout = "compact"
	LayoutExpanded Layout = "expanded"
	LayoutGrid     Layout = "grid"
)

// Scheme names a chart color palette.
type Scheme string

const (
	SchemeDefault Scheme = "default"
	SchemePastel  Scheme = "pastel"
	SchemeDark    Scheme = "dark"
	SchemeLight   Scheme = "light"
	SchemeBold    Scheme = "bold"
)

// MetricSpec describes one scalar metric card.
type MetricSpec struct {
	Column      string      `json:"column" yaml:"column"`
	Label       string      `json:"label,omitempty" yaml:"label,omitempty"`
	Aggregation Aggregation `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`
	Format      string      `json:"format,omitempty" yaml:"format,omitempty"`
	DeltaColumn string      `json:"delta_column,omitempty" yaml:"delta_column,omitempty"`
	DeltaLabel  string      `json:"delta_label,omitempty" yaml:"delta_label,omitempty"`
	Threshold   *float64    `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// ChartSpec describes one chart.
type ChartSpec struct {
	Kind        ChartKind      `json:"type" yaml:"type"`
	Title       string         `json:"title,omitempty" yaml:"title,omitempty"`
	X           string         `json:"x" yaml:"x"`
	Y           string         `json:"y" yaml:"y"`
	Color       string         `json:"color,omitempty" yaml:"color,omitempty"`
	XLabel      string         `json:"x_label,omitempty" yaml:"x_label,omitempty"`
	YLabel      string         `json:"y_label,omitempty" yaml:"y_label,omitempty"`
	Orientation string         `json:"orientation,omitempty" yaml:"orientation,omitempty"`
	Aggregation Aggregation    `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`
	GroupBy     string         `json:"group_by,omitempty" yaml:"group_by,omitempty"`
	Sort        string         `json:"sort,omitempty" yaml:"sort,omitempty"`
	Limit       int            `json:"limit,omitempty" yaml:"limit,omitempty"`
	Options     map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// FilterSpec describes one interactive filter.
type FilterSpec struct {
	Kind    FilterKind `json:"type" yaml:"type"`
	Column  string     `json:"column" yaml:"column"`
	Label   string     `json:"label,omitempty" yaml:"label,omitempty"`
	Default any        `json:"default,omitempty" yaml:"default,omitempty"`
	Options []string   `json:"options,omitempty" yaml:"options,omitempty"`
}

// StyleSpec selects the document theme, layout, and chart palette.
type StyleSpec struct {
	Theme   Theme  `json:"theme,omitempty" yaml:"theme,omitempty"`
	Layout  Layout `json:"layout,omitempty" yaml:"layout,omitempty"`
	Columns int    `json:"columns,omitempty" yaml:"columns,omitempty"`
	Scheme  Scheme `json:"color_scheme,omitempty" yaml:"color_scheme,omitempty"`
}

// Dashboard is the fully resolved dashboard configuration. Once bound to a
// rendered artifact it is immutable — regeneration creates a new dashboard
// instance.
type Dashboard struct {
	Title         string       `json:"title" yaml:"title"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty"`
	Metrics       []MetricSpec `json:"metrics" yaml:"metrics"`
	Charts        []ChartSpec  `json:"charts" yaml:"charts"`
	Filters       []FilterSpec `json:"filters" yaml:"filters"`
	Style         StyleSpec    `json:"style" yaml:"style"`
	AutoConfigure bool         `json:"auto_configure" yaml:"auto_configure"`
}

// DefaultStyle returns the style applied when the caller specifies none.
func DefaultStyle() StyleSpec {
	return StyleSpec{
		Theme:   ThemeDefault,
		Layout:  LayoutStandard,
		Columns: 2,
		Scheme:  SchemeDefault,
	}
}
