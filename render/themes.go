package render

import "github.com/dashgen-org/dashgen/config"

// ============================================================================
// THEMES — Document Color Bundles
// ============================================================================

// Colors is the set of CSS colors one theme contributes to the document.
type Colors struct {
	Background string
	Surface    string
	Text       string
	Muted      string
	Accent     string
	Border     string
}

var themes = map[config.Theme]Colors{
	config.ThemeDefault: {
		Background: "#F8FAFC",
		Surface:    "#FFFFFF",
		Text:       "#0F172A",
		Muted:      "#64748B",
		Accent:     "#4F46E5",
		Border:     "#E2E8F0",
	},
	config.ThemeDark: {
		Background: "#0F172A",
		Surface:    "#1E293B",
		Text:       "#F8FAFC",
		Muted:      "#94A3B8",
		Accent:     "#38BDF8",
		Border:     "#334155",
	},
	config.ThemeLight: {
		Background: "#FFFFFF",
		Surface:    "#F8FAFC",
		Text:       "#1E293B",
		Muted:      "#94A3B8",
		Accent:     "#2563EB",
		Border:     "#E2E8F0",
	},
	config.ThemeColorful: {
		Background: "#FDF4FF",
		Surface:    "#FFFFFF",
		Text:       "#3B0764",
		Muted:      "#A855F7",
		Accent:     "#DB2777",
		Border:     "#F5D0FE",
	},
}

// ThemeColors returns the color bundle for a theme, defaulting when unknown.
func ThemeColors(t config.Theme) Colors {
	if c, ok := themes[t]; ok {
		return c
	}
	return themes[config.ThemeDefault]
}
