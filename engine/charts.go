package engine

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	chartrender "github.com/go-echarts/go-echarts/v2/render"

	"github.com/dashgen-org/dashgen/config"
	"github.com/dashgen-org/dashgen/dataset"
)

// ============================================================================
// CHART BUILDER — Chart Specs to Embeddable ECharts Snippets
// ============================================================================
// Each chart spec becomes a self-contained HTML element plus init script,
// ready to drop into the composed document. Pie charts always aggregate;
// bar and line aggregate when a group_by is set, otherwise they plot raw
// rows. A color column splits raw-row charts into one series per value.
// ============================================================================

// Color palettes by scheme. Unknown schemes fall back to default.
var palettes = map[config.Scheme][]string{
	config.SchemeDefault: {
		"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
		"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
	},
	config.SchemePastel: {
		"#A5B4FC", "#6EE7B7", "#FCD34D", "#FCA5A5", "#C4B5FD",
		"#67E8F9", "#F9A8D4", "#BEF264", "#FDBA74", "#A5B4FC",
	},
	config.SchemeDark: {
		"#312E81", "#064E3B", "#78350F", "#7F1D1D", "#4C1D95",
		"#164E63", "#831843", "#365314", "#7C2D12", "#1E3A8A",
	},
	config.SchemeLight: {
		"#E0E7FF", "#D1FAE5", "#FEF3C7", "#FEE2E2", "#EDE9FE",
		"#CFFAFE", "#FCE7F3", "#ECFCCB", "#FFEDD5", "#DBEAFE",
	},
	config.SchemeBold: {
		"#1D4ED8", "#047857", "#B45309", "#B91C1C", "#6D28D9",
		"#0E7490", "#BE185D", "#4D7C0F", "#C2410C", "#3730A3",
	},
}

// Palette returns the color list for a scheme, defaulting when unknown.
func Palette(s config.Scheme) []string {
	if p, ok := palettes[s]; ok {
		return p
	}
	return palettes[config.SchemeDefault]
}

// ChartError reports a chart spec the table cannot satisfy. Column names
// the offending column when the failure is about one.
type ChartError struct {
	Kind   config.ChartKind
	Column string
	Reason string
}

func (e *ChartError) Error() string {
	return fmt.Sprintf("cannot render %s chart: %s", e.Kind, e.Reason)
}

// chartErr wraps an aggregation failure, lifting the column name out of a
// ColumnError when one is present.
func chartErr(kind config.ChartKind, err error) *ChartError {
	var colErr *ColumnError
	if errors.As(err, &colErr) {
		return &ChartError{Kind: kind, Column: colErr.Column, Reason: err.Error()}
	}
	return &ChartError{Kind: kind, Reason: err.Error()}
}

// ChartArtifact is one rendered chart: an HTML element and the script that
// initializes it.
type ChartArtifact struct {
	Title   string
	Element template.HTML
	Script  template.HTML
}

type snippetRenderer interface {
	RenderSnippet() chartrender.ChartSnippet
}

func toArtifact(title string, c snippetRenderer) *ChartArtifact {
	s := c.RenderSnippet()
	return &ChartArtifact{
		Title:   title,
		Element: template.HTML(s.Element),
		Script:  template.HTML(s.Script),
	}
}

// BuildChart renders one chart spec against the filtered view.
func BuildChart(t *dataset.Table, spec config.ChartSpec, scheme config.Scheme) (*ChartArtifact, error) {
	switch spec.Kind {
	case config.ChartBar:
		return buildBar(t, spec, scheme)
	case config.ChartLine, config.ChartArea:
		return buildLine(t, spec, scheme)
	case config.ChartPie:
		return buildPie(t, spec, scheme)
	case config.ChartScatter:
		return buildScatter(t, spec, scheme)
	case config.ChartHistogram:
		return buildHistogram(t, spec, scheme)
	case config.ChartBox:
		return buildBox(t, spec, scheme)
	case config.ChartHeatmap:
		return buildHeatmap(t, spec, scheme)
	default:
		return nil, &ChartError{Kind: spec.Kind, Reason: "unsupported chart type"}
	}
}

func checkColumns(t *dataset.Table, spec config.ChartSpec, cols ...string) error {
	for _, col := range cols {
		if col == "" {
			continue
		}
		if !t.HasColumn(col) {
			return &ChartError{Kind: spec.Kind, Column: col, Reason: fmt.Sprintf("column %q not found", col)}
		}
	}
	return nil
}

func axisLabel(override, col string) string {
	if override != "" {
		return override
	}
	return col
}

func initOpts() charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		Width:  "100%",
		Height: "400px",
	})
}

// ============================================================================
// CARTESIAN CHARTS
// ============================================================================

func buildBar(t *dataset.Table, spec config.ChartSpec, scheme config.Scheme) (*ChartArtifact, error) {
	if err := checkColumns(t, spec, spec.X, spec.Y, spec.Color, spec.GroupBy); err != nil {
		return nil, err
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithColorsOpts(opts.Colors(Palette(scheme))),
		charts.WithXAxisOpts(opts.XAxis{Name: axisLabel(spec.XLabel, spec.X), Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: axisLabel(spec.YLabel, spec.Y), Type: "value"}),
		initOpts(),
	)
	if spec.Orientation == "horizontal" {
		bar.XYReversal()
	}

	if spec.GroupBy != "" {
		groups, err := aggregated(t, spec)
		if err != nil {
			return nil, err
		}
		labels := make([]string, len(groups))
		data := make([]opts.BarData, len(groups))
		for i, g := range groups {
			labels[i] = g.Key
			data[i] = opts.BarData{Value: round2(g.Value)}
		}
		bar.SetXAxis(labels).AddSeries(axisLabel(spec.YLabel, spec.Y), data)
		return toArtifact(spec.Title, bar), nil
	}

	labels, series, err := rawSeries(t, spec)
	if err != nil {
		return nil, err
	}
	bar.SetXAxis(labels)
	for _, s := range series {
		data := make([]opts.BarData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(s.Name, data)
	}
	return toArtifact(spec.Title, bar), nil
}

func buildLine(t *dataset.Table, spec config.ChartSpec, scheme config.Scheme) (*ChartArtifact, error) {
	if err := checkColumns(t, spec, spec.X, spec.Y, spec.Color, spec.GroupBy); err != nil {
		return nil, err
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithColorsOpts(opts.Colors(Palette(scheme))),
		charts.WithXAxisOpts(opts.XAxis{Name: axisLabel(spec.XLabel, spec.X), Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: axisLabel(spec.YLabel, spec.Y), Type: "value"}),
		initOpts(),
	)

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	}
	if spec.Kind == config.ChartArea {
		seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.3}))
	}

	if spec.GroupBy != "" {
		groups, err := aggregated(t, spec)
		if err != nil {
			return nil, err
		}
		labels := make([]string, len(groups))
		data := make([]opts.LineData, len(groups))
		for i, g := range groups {
			labels[i] = g.Key
			data[i] = opts.LineData{Value: round2(g.Value)}
		}
		line.SetXAxis(labels).AddSeries(axisLabel(spec.YLabel, spec.Y), data, seriesOpts...)
		return toArtifact(spec.Title, line), nil
	}

	labels, series, err := rawSeries(t, spec)
	if err != nil {
		return nil, err
	}
	line.SetXAxis(labels)
	for _, s := range series {
		data := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, data, seriesOpts...)
	}
	return toArtifact(spec.Title, line), nil
}

func buildScatter(t *dataset.Table, spec config.ChartSpec, scheme config.Scheme) (*ChartArtifact, error) {
	if err := checkColumns(t, spec, spec.X, spec.Y, spec.Color); err != nil {
		return nil, err
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithColorsOpts(opts.Colors(Palette(scheme))),
		charts.WithXAxisOpts(opts.XAxis{Name: axisLabel(spec.XLabel, spec.X), Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: axisLabel(spec.YLabel, spec.Y), Type: "value"}),
		initOpts(),
	)

	labels, series, err := rawSeries(t, spec)
	if err != nil {
		return nil, err
	}
	scatter.SetXAxis(labels)
	for _, s := range series {
		data := make([]opts.ScatterData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.ScatterData{Value: v}
		}
		scatter.AddSeries(s.Name, data)
	}
	return toArtifact(spec.Title, scatter), nil
}

// ============================================================================
// AGGREGATED CHARTS
// ============================================================================

func buildPie(t *dataset.Table, spec config.ChartSpec, scheme config.Scheme) (*ChartArtifact, error) {
	keyCol := spec.GroupBy
	if keyCol == "" {
		keyCol = spec.X
	}
	if err := checkColumns(t, spec, keyCol, spec.Y); err != nil {
		return nil, err
	}

	groups, err := GroupAndAggregate(t, keyCol, spec.Y, aggOrSum(spec.Aggregation), spec.Sort, spec.Limit)
	if err != nil {
		return nil, chartErr(spec.Kind, err)
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithColorsOpts(opts.Colors(Palette(scheme))),
		initOpts(),
	)

	items := make([]opts.PieData, len(groups))
	for i, g := range groups {
		items[i] = opts.PieData{Name: g.Key, Value: round2(g.Value)}
	}
	pie.AddSeries(axisLabel(spec.YLabel, spec.Y), items)
	return toArtifact(spec.Title, pie), nil
}

func buildHistogram(t *dataset.Table, spec config.ChartSpec, scheme config.Scheme) (*ChartArtifact, error) {
	if err := checkColumns(t, spec, spec.X); err != nil {
		return nil, err
	}
	col, _ := t.Column(spec.X)
	if col.Kind != dataset.KindNumeric {
		return nil, &ChartError{Kind: spec.Kind, Column: spec.X, Reason: fmt.Sprintf("column %q is not numeric", spec.X)}
	}

	vals := make([]float64, 0, t.NumRows())
	for row := 0; row < t.NumRows(); row++ {
		if v, ok := t.Float(spec.X, row); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return nil, &ChartError{Kind: spec.Kind, Column: spec.X, Reason: fmt.Sprintf("column %q has no values", spec.X)}
	}

	bins := 10
	if b, ok := numOption(spec.Options, "bins"); ok && b > 0 {
		bins = int(b)
	}
	labels, counts := binValues(vals, bins)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithColorsOpts(opts.Colors(Palette(scheme))),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      axisLabel(spec.XLabel, spec.X),
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: axisLabel(spec.YLabel, "Count"), Type: "value"}),
		initOpts(),
	)

	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}
	bar.SetXAxis(labels).AddSeries("Count", data,
		charts.WithBarChartOpts(opts.BarChart{BarGap: "0%"}),
	)
	return toArtifact(spec.Title, bar), nil
}

// numOption reads a numeric chart option. JSON decodes numbers as float64,
// YAML as int, so both are accepted.
func numOption(options map[string]any, key string) (float64, bool) {
	switch v := options[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// binValues splits values into equal-width bins over the observed range.
// A degenerate range collapses to a single bin.
func binValues(vals []float64, bins int) (labels []string, counts []int) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return []string{formatBinLabel(lo, hi)}, []int{len(vals)}
	}

	width := (hi - lo) / float64(bins)
	counts = make([]int, bins)
	for _, v := range vals {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	labels = make([]string, bins)
	for i := range labels {
		labels[i] = formatBinLabel(lo+float64(i)*width, lo+float64(i+1)*width)
	}
	return labels, counts
}

func formatBinLabel(lo, hi float64) string {
	return fmt.Sprintf("%.4g–%.4g", lo, hi)
}

func buildBox(t *dataset.Table, spec config.ChartSpec, scheme config.Scheme) (*ChartArtifact, error) {
	if err := checkColumns(t, spec, spec.X, spec.Y); err != nil {
		return nil, err
	}
	yCol, _ := t.Column(spec.Y)
	if yCol.Kind != dataset.KindNumeric {
		return nil, &ChartError{Kind: spec.Kind, Column: spec.Y, Reason: fmt.Sprintf("column %q is not numeric", spec.Y)}
	}

	// One box per x category, or a single box with no x.
	var labels []string
	var boxes [][]float64
	if spec.X != "" {
		for _, key := range t.DistinctValues(spec.X) {
			var vals []float64
			for row := 0; row < t.NumRows(); row++ {
				if t.String(spec.X, row) != key {
					continue
				}
				if v, ok := t.Float(spec.Y, row); ok {
					vals = append(vals, v)
				}
			}
			if len(vals) == 0 {
				continue
			}
			labels = append(labels, key)
			boxes = append(boxes, fiveNumber(vals))
		}
	} else {
		var vals []float64
		for row := 0; row < t.NumRows(); row++ {
			if v, ok := t.Float(spec.Y, row); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) > 0 {
			labels = append(labels, axisLabel(spec.YLabel, spec.Y))
			boxes = append(boxes, fiveNumber(vals))
		}
	}
	if len(boxes) == 0 {
		return nil, &ChartError{Kind: spec.Kind, Column: spec.Y, Reason: fmt.Sprintf("column %q has no values", spec.Y)}
	}

	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithColorsOpts(opts.Colors(Palette(scheme))),
		charts.WithXAxisOpts(opts.XAxis{Name: axisLabel(spec.XLabel, spec.X), Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: axisLabel(spec.YLabel, spec.Y), Type: "value"}),
		initOpts(),
	)

	data := make([]opts.BoxPlotData, len(boxes))
	for i, b := range boxes {
		data[i] = opts.BoxPlotData{Value: b}
	}
	box.SetXAxis(labels).AddSeries(axisLabel(spec.YLabel, spec.Y), data)
	return toArtifact(spec.Title, box), nil
}

// fiveNumber computes min, Q1, median, Q3, max.
func fiveNumber(vals []float64) []float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	return []float64{
		sorted[0],
		quantile(sorted, 0.25),
		quantile(sorted, 0.5),
		quantile(sorted, 0.75),
		sorted[len(sorted)-1],
	}
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func buildHeatmap(t *dataset.Table, spec config.ChartSpec, scheme config.Scheme) (*ChartArtifact, error) {
	if err := checkColumns(t, spec, spec.X, spec.Y); err != nil {
		return nil, err
	}
	if spec.X == "" || spec.Y == "" {
		return nil, &ChartError{Kind: spec.Kind, Reason: "heatmap requires both x and y columns"}
	}

	xVals := t.DistinctValues(spec.X)
	yVals := t.DistinctValues(spec.Y)
	xIdx := indexOf(xVals)
	yIdx := indexOf(yVals)

	counts := make(map[[2]int]int)
	maxCount := 0
	for row := 0; row < t.NumRows(); row++ {
		if t.IsNull(spec.X, row) || t.IsNull(spec.Y, row) {
			continue
		}
		key := [2]int{xIdx[t.String(spec.X, row)], yIdx[t.String(spec.Y, row)]}
		counts[key]++
		if counts[key] > maxCount {
			maxCount = counts[key]
		}
	}

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      axisLabel(spec.XLabel, spec.X),
			Type:      "category",
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      axisLabel(spec.YLabel, spec.Y),
			Type:      "category",
			Data:      yVals,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxCount),
			InRange:    &opts.VisualMapInRange{Color: heatRamp(scheme)},
		}),
		initOpts(),
	)

	data := make([]opts.HeatMapData, 0, len(xVals)*len(yVals))
	for xi := range xVals {
		for yi := range yVals {
			data = append(data, opts.HeatMapData{
				Value: []interface{}{xi, yi, counts[[2]int{xi, yi}]},
			})
		}
	}
	heatmap.SetXAxis(xVals).AddSeries("Count", data)
	return toArtifact(spec.Title, heatmap), nil
}

// heatRamp builds a low-to-high color ramp from the scheme palette.
func heatRamp(scheme config.Scheme) []string {
	p := Palette(scheme)
	return []string{"#FFFFFF", p[0], p[3]}
}

func indexOf(vals []string) map[string]int {
	m := make(map[string]int, len(vals))
	for i, v := range vals {
		m[v] = i
	}
	return m
}

// ============================================================================
// SERIES EXTRACTION
// ============================================================================

type rawSeriesData struct {
	Name   string
	Values []float64
}

// aggregated runs the group pipeline for a chart with a group_by column.
func aggregated(t *dataset.Table, spec config.ChartSpec) ([]Group, error) {
	groups, err := GroupAndAggregate(t, spec.GroupBy, spec.Y, aggOrSum(spec.Aggregation), spec.Sort, spec.Limit)
	if err != nil {
		return nil, chartErr(spec.Kind, err)
	}
	return groups, nil
}

func aggOrSum(agg config.Aggregation) config.Aggregation {
	if agg == "" {
		return config.AggSum
	}
	return agg
}

// rawSeries extracts x labels and y values row by row, chronologically when
// x is a datetime column. A color column splits rows into one series per
// distinct value; rows where y is null are dropped, and so are rows whose
// color cell is null when a split is requested.
func rawSeries(t *dataset.Table, spec config.ChartSpec) ([]string, []rawSeriesData, error) {
	yCol, ok := t.Column(spec.Y)
	if !ok {
		return nil, nil, &ChartError{Kind: spec.Kind, Column: spec.Y, Reason: fmt.Sprintf("column %q not found", spec.Y)}
	}
	if yCol.Kind != dataset.KindNumeric {
		return nil, nil, &ChartError{Kind: spec.Kind, Column: spec.Y, Reason: fmt.Sprintf("column %q is not numeric", spec.Y)}
	}
	splitColor := spec.Color != "" && t.HasColumn(spec.Color)

	order := make([]int, 0, t.NumRows())
	for row := 0; row < t.NumRows(); row++ {
		if _, ok := t.Float(spec.Y, row); !ok {
			continue
		}
		if splitColor && t.IsNull(spec.Color, row) {
			continue
		}
		order = append(order, row)
	}
	if xCol, ok := t.Column(spec.X); ok && xCol.Kind == dataset.KindDatetime {
		sort.SliceStable(order, func(i, j int) bool {
			ti, _ := t.Time(spec.X, order[i])
			tj, _ := t.Time(spec.X, order[j])
			return ti.Before(tj)
		})
	}

	labels := make([]string, len(order))
	for i, row := range order {
		labels[i] = t.String(spec.X, row)
	}

	if !splitColor {
		values := make([]float64, len(order))
		for i, row := range order {
			values[i], _ = t.Float(spec.Y, row)
		}
		name := axisLabel(spec.YLabel, spec.Y)
		return labels, []rawSeriesData{{Name: name, Values: values}}, nil
	}

	// Split into one series per color value, aligned on the shared x axis.
	// Rows outside a series keep their slot as zero.
	names := t.DistinctValues(spec.Color)
	byName := make(map[string][]float64, len(names))
	for _, n := range names {
		byName[n] = make([]float64, len(order))
	}
	for i, row := range order {
		v, _ := t.Float(spec.Y, row)
		byName[t.String(spec.Color, row)][i] = v
	}

	series := make([]rawSeriesData, 0, len(names))
	for _, n := range names {
		series = append(series, rawSeriesData{Name: n, Values: byName[n]})
	}
	return labels, series, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
