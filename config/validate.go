package config

import (
	"fmt"

	"github.com/dashgen-org/dashgen/dataset"
)

// ============================================================================
// VALIDATOR — Raw Map → Dashboard
// ============================================================================
// Normalize coerces a loosely-typed configuration map (decoded JSON/YAML)
// into a Dashboard; Validate checks and defaults a typed Dashboard.
// Column existence is deliberately NOT checked here — a spec may reference
// columns absent from the current sample but present in production data.
// That check happens per-spec at render time, where a miss downgrades to a
// warning instead of failing the whole dashboard.
// ============================================================================

// InvalidConfigError marks a structurally invalid configuration. Fatal for
// the request that carries it.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

func invalidf(format string, args ...any) error {
	return &InvalidConfigError{Reason: fmt.Sprintf(format, args...)}
}

// Normalize converts a raw configuration map into a Dashboard. A nil or
// empty map yields an empty Dashboard with AutoConfigure on, matching the
// behavior of an unconfigured request.
func Normalize(raw map[string]any) (*Dashboard, error) {
	d := &Dashboard{AutoConfigure: true, Style: DefaultStyle()}
	if len(raw) == 0 {
		return d, nil
	}

	d.Title, _ = raw["title"].(string)
	d.Description, _ = raw["description"].(string)
	if ac, ok := raw["auto_configure"].(bool); ok {
		d.AutoConfigure = ac
	}

	if v, ok := raw["metrics"]; ok {
		list, ok := asList(v)
		if !ok {
			return nil, invalidf("metrics must be a list")
		}
		for i, entry := range list {
			m, err := normalizeMetric(entry, i)
			if err != nil {
				return nil, err
			}
			d.Metrics = append(d.Metrics, m)
		}
	}

	if v, ok := raw["charts"]; ok {
		list, ok := asList(v)
		if !ok {
			return nil, invalidf("charts must be a list")
		}
		for i, entry := range list {
			c, err := normalizeChart(entry, i)
			if err != nil {
				return nil, err
			}
			d.Charts = append(d.Charts, c)
		}
	}

	if v, ok := raw["filters"]; ok {
		list, ok := asList(v)
		if !ok {
			return nil, invalidf("filters must be a list")
		}
		for i, entry := range list {
			f, err := normalizeFilter(entry, i)
			if err != nil {
				return nil, err
			}
			d.Filters = append(d.Filters, f)
		}
	}

	if v, ok := raw["style"].(map[string]any); ok {
		d.Style = normalizeStyle(v)
	}

	return d, nil
}

// Validate checks a typed Dashboard and fills remaining defaults. It is
// idempotent: Validate(Validate(d)) == Validate(d). The input is not
// mutated; a normalized copy is returned.
func Validate(d *Dashboard) (*Dashboard, error) {
	if d == nil {
		return nil, invalidf("configuration is nil")
	}
	if d.Title == "" {
		return nil, invalidf("dashboard title is required")
	}

	out := *d
	out.Metrics = make([]MetricSpec, len(d.Metrics))
	out.Charts = make([]ChartSpec, len(d.Charts))
	out.Filters = make([]FilterSpec, len(d.Filters))

	for i, m := range d.Metrics {
		if m.Column == "" {
			return nil, invalidf("metric at index %d is missing 'column'", i)
		}
		if m.Label == "" {
			m.Label = dataset.DisplayName(m.Column)
		}
		if m.Aggregation == "" {
			m.Aggregation = AggSum
		}
		if !KnownAggregation(m.Aggregation) {
			return nil, invalidf("metric %q has unknown aggregation %q", m.Column, m.Aggregation)
		}
		out.Metrics[i] = m
	}

	for i, c := range d.Charts {
		if c.Kind == "" {
			c.Kind = ChartBar
		}
		// Histograms bin a single column; every other kind needs both axes.
		if c.X == "" || (c.Y == "" && c.Kind != ChartHistogram) {
			return nil, invalidf("chart at index %d is missing 'x' or 'y'", i)
		}
		if c.Title == "" {
			if c.Y == "" {
				c.Title = fmt.Sprintf("Distribution of %s", dataset.DisplayName(c.X))
			} else {
				c.Title = fmt.Sprintf("%s by %s", dataset.DisplayName(c.Y), dataset.DisplayName(c.X))
			}
		}
		out.Charts[i] = c
	}

	for i, f := range d.Filters {
		if f.Kind == "" {
			f.Kind = FilterCategorical
		}
		if f.Column == "" {
			return nil, invalidf("filter at index %d is missing 'column'", i)
		}
		if f.Label == "" {
			f.Label = dataset.DisplayName(f.Column)
		}
		out.Filters[i] = f
	}

	if out.Style.Theme == "" {
		out.Style.Theme = ThemeDefault
	}
	if out.Style.Layout == "" {
		out.Style.Layout = LayoutStandard
	}
	if out.Style.Columns < 1 {
		out.Style.Columns = DefaultStyle().Columns
	}
	if out.Style.Scheme == "" {
		out.Style.Scheme = SchemeDefault
	}

	return &out, nil
}

// ============================================================================
// PER-ENTRY NORMALIZATION
// ============================================================================

func normalizeMetric(entry any, i int) (MetricSpec, error) {
	// A bare column-name string upgrades to a sum metric over that column.
	if s, ok := entry.(string); ok {
		return MetricSpec{Column: s, Label: s, Aggregation: AggSum}, nil
	}
	m, ok := asMap(entry)
	if !ok {
		return MetricSpec{}, invalidf("metric at index %d must be a string or a mapping", i)
	}
	spec := MetricSpec{
		Column:      str(m, "column"),
		Label:       str(m, "label"),
		Aggregation: Aggregation(str(m, "aggregation")),
		Format:      str(m, "format"),
		DeltaColumn: str(m, "delta_column"),
		DeltaLabel:  str(m, "delta_label"),
	}
	if spec.Column == "" {
		return MetricSpec{}, invalidf("metric at index %d is missing 'column'", i)
	}
	if v, ok := num(m, "threshold"); ok {
		spec.Threshold = &v
	}
	return spec, nil
}

func normalizeChart(entry any, i int) (ChartSpec, error) {
	m, ok := asMap(entry)
	if !ok {
		return ChartSpec{}, invalidf("chart at index %d must be a mapping", i)
	}
	spec := ChartSpec{
		Kind:        ChartKind(str(m, "type")),
		Title:       str(m, "title"),
		X:           str(m, "x"),
		Y:           str(m, "y"),
		Color:       str(m, "color"),
		XLabel:      str(m, "x_label"),
		YLabel:      str(m, "y_label"),
		Orientation: str(m, "orientation"),
		Aggregation: Aggregation(str(m, "aggregation")),
		GroupBy:     str(m, "group_by"),
		Sort:        str(m, "sort"),
	}
	if spec.Kind == "" {
		spec.Kind = ChartBar
	}
	if spec.X == "" || (spec.Y == "" && spec.Kind != ChartHistogram) {
		return ChartSpec{}, invalidf("chart at index %d is missing 'x' or 'y'", i)
	}
	if v, ok := num(m, "limit"); ok {
		spec.Limit = int(v)
	}
	if opts, ok := m["options"].(map[string]any); ok {
		spec.Options = opts
	}
	return spec, nil
}

func normalizeFilter(entry any, i int) (FilterSpec, error) {
	m, ok := asMap(entry)
	if !ok {
		return FilterSpec{}, invalidf("filter at index %d must be a mapping", i)
	}
	spec := FilterSpec{
		Kind:    FilterKind(str(m, "type")),
		Column:  str(m, "column"),
		Label:   str(m, "label"),
		Default: m["default"],
	}
	if spec.Kind == "" {
		spec.Kind = FilterCategorical
	}
	if spec.Column == "" {
		return FilterSpec{}, invalidf("filter at index %d is missing 'column'", i)
	}
	if opts, ok := asList(m["options"]); ok {
		for _, o := range opts {
			if s, ok := o.(string); ok {
				spec.Options = append(spec.Options, s)
			}
		}
	}
	return spec, nil
}

func normalizeStyle(m map[string]any) StyleSpec {
	s := DefaultStyle()
	if v := str(m, "theme"); v != "" {
		s.Theme = Theme(v)
	}
	if v := str(m, "layout"); v != "" {
		s.Layout = Layout(v)
	}
	if v := str(m, "color_scheme"); v != "" {
		s.Scheme = Scheme(v)
	}
	if v, ok := num(m, "columns"); ok && int(v) >= 1 {
		s.Columns = int(v)
	}
	return s
}

// ============================================================================
// MAP HELPERS
// ============================================================================

func asList(v any) ([]any, bool) {
	list, ok := v.([]any)
	return list, ok
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func num(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
