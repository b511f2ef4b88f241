package render

import (
	"bytes"
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashgen-org/dashgen/config"
)

// ============================================================================
// DOCUMENT COMPOSER TESTS
// ============================================================================

func samplePage() *Page {
	return &Page{
		Title:       "Q1 Sales",
		Description: "Quarterly overview",
		Generated:   time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC),
		Records:     420,
		Style:       config.DefaultStyle(),
		Metrics: []MetricCard{
			{Label: "Total Sales", Value: "7.2K"},
			{Label: "Average Sales", Value: "1.2K", Delta: "Units: 11"},
		},
		Charts: []Block{
			{Title: "Sales by Region", Element: template.HTML("<div>chart</div>"), Script: template.HTML("<script>init()</script>")},
		},
		Filters: []FilterNote{
			{Label: "Region", Summary: "2 selected"},
		},
	}
}

func TestCompose(t *testing.T) {
	doc, err := Compose(samplePage())
	require.NoError(t, err)

	html := string(doc.Bytes())
	assert.Contains(t, html, "<title>Q1 Sales</title>")
	assert.Contains(t, html, "Quarterly overview")
	assert.Contains(t, html, "Total Sales")
	assert.Contains(t, html, "<div>chart</div>")
	assert.Contains(t, html, "<script>init()</script>")
	assert.Contains(t, html, "2 selected")
	assert.Contains(t, html, "420 records")
	assert.Contains(t, html, "March 20, 2026")
}

func TestComposeErrorPlaceholder(t *testing.T) {
	p := samplePage()
	p.Charts = append(p.Charts, Block{Title: "Doomed", Err: `column "Foo" not found`})
	p.Warnings = []string{`chart "Foo": column not found`}

	doc, err := Compose(p)
	require.NoError(t, err)

	html := string(doc.Bytes())
	assert.Contains(t, html, "Error generating chart: column &#34;Foo&#34; not found")
	assert.Contains(t, html, "class=\"warning\"")
}

func TestComposeLayouts(t *testing.T) {
	renderWith := func(t *testing.T, layout config.Layout, cols int) string {
		t.Helper()
		p := samplePage()
		p.Style.Layout = layout
		p.Style.Columns = cols
		doc, err := Compose(p)
		require.NoError(t, err)
		return string(doc.Bytes())
	}

	t.Run("standard puts metrics in a side rail", func(t *testing.T) {
		html := renderWith(t, config.LayoutStandard, 3)
		assert.Contains(t, html, `class="container layout-standard"`)
		assert.Contains(t, html, `class="side-rail"`)
		assert.Contains(t, html, `class="chart-stack"`)
		assert.NotContains(t, html, `class="chart-grid"`)
	})

	t.Run("compact flows metrics inline", func(t *testing.T) {
		html := renderWith(t, config.LayoutCompact, 0)
		assert.Contains(t, html, `class="metric-flow"`)
		assert.Contains(t, html, "repeat(2, 1fr)")
		assert.NotContains(t, html, `class="side-rail"`)
	})

	t.Run("expanded stacks charts full width", func(t *testing.T) {
		html := renderWith(t, config.LayoutExpanded, 3)
		assert.Contains(t, html, `class="container layout-expanded"`)
		assert.Contains(t, html, `class="metric-grid"`)
		assert.Contains(t, html, "repeat(1, 1fr)")
	})

	t.Run("grid honors column count", func(t *testing.T) {
		html := renderWith(t, config.LayoutGrid, 3)
		assert.Contains(t, html, `class="metric-grid"`)
		assert.Contains(t, html, "repeat(3, 1fr)")
	})

	t.Run("all four differ", func(t *testing.T) {
		seen := map[string]config.Layout{}
		for _, layout := range []config.Layout{
			config.LayoutStandard, config.LayoutCompact, config.LayoutExpanded, config.LayoutGrid,
		} {
			html := renderWith(t, layout, 2)
			if prev, dup := seen[html]; dup {
				t.Fatalf("layout %s renders identically to %s", layout, prev)
			}
			seen[html] = layout
		}
	})
}

func TestComposePreview(t *testing.T) {
	p := samplePage()
	p.Preview = &Preview{
		Columns: []string{"Region", "Sales"},
		Rows:    [][]string{{"North", "1200.50"}, {"South", "850.00"}},
	}
	doc, err := Compose(p)
	require.NoError(t, err)

	html := string(doc.Bytes())
	assert.Contains(t, html, "Data Preview")
	assert.Contains(t, html, "<th>Region</th>")
	assert.Contains(t, html, "<td>1200.50</td>")
}

func TestDocumentWriteTo(t *testing.T) {
	doc, err := Compose(samplePage())
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := doc.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(doc.Bytes())), n)
	assert.Equal(t, doc.Bytes(), buf.Bytes())
}

func TestThemeColorsFallback(t *testing.T) {
	assert.Equal(t, ThemeColors(config.ThemeDefault), ThemeColors(config.Theme("solarized")))
	assert.NotEqual(t, ThemeColors(config.ThemeDefault), ThemeColors(config.ThemeDark))
}

func TestComposeDarkTheme(t *testing.T) {
	p := samplePage()
	p.Style.Theme = config.ThemeDark
	doc, err := Compose(p)
	require.NoError(t, err)
	assert.Contains(t, string(doc.Bytes()), ThemeColors(config.ThemeDark).Background)
}
