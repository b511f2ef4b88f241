package dataset

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var salesCSV = []byte(`Date,Region,Sales,Units,Active
2026-01-05,North,1200.50,10,true
2026-01-12,South,980.00,8,false
2026-02-02,East,1500.25,12,true
2026-02-15,West,700.00,5,false
2026-03-01,North,1100.75,9,true
`)

func TestLoadCSV(t *testing.T) {
	table, err := Load(salesCSV, FormatAuto)
	require.NoError(t, err)

	assert.Equal(t, 5, table.NumRows())
	assert.Equal(t, []string{"Date", "Region", "Sales", "Units", "Active"}, table.ColumnNames())

	kinds := map[string]Kind{
		"Date":   KindDatetime,
		"Region": KindCategorical,
		"Sales":  KindNumeric,
		"Units":  KindNumeric,
		"Active": KindBool,
	}
	for name, want := range kinds {
		col, ok := table.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, want, col.Kind, name)
	}
}

func TestLoadJSON(t *testing.T) {
	payload := []byte(`[
		{"city": "Oslo", "temp": 4.5, "when": "2026-01-01"},
		{"city": "Bergen", "temp": 7.1, "when": "2026-01-02"},
		{"city": "Oslo", "temp": null, "when": "2026-01-03"}
	]`)
	table, err := Load(payload, FormatAuto)
	require.NoError(t, err)

	assert.Equal(t, 3, table.NumRows())
	city, ok := table.Column("city")
	require.True(t, ok)
	assert.Equal(t, KindCategorical, city.Kind)

	temp, ok := table.Column("temp")
	require.True(t, ok)
	assert.Equal(t, KindNumeric, temp.Kind)
	assert.True(t, table.IsNull("temp", 2))

	when, ok := table.Column("when")
	require.True(t, ok)
	assert.Equal(t, KindDatetime, when.Kind)
}

func TestLoadUnsupported(t *testing.T) {
	_, err := Load([]byte("\x00\x01\x02 not a table"), FormatAuto)
	require.Error(t, err)

	var uf *UnsupportedFormatError
	require.True(t, errors.As(err, &uf))
	assert.Len(t, uf.Attempts, 3)
}

func TestLoadExplicitHint(t *testing.T) {
	// JSON payload with a CSV hint must fail rather than fall through.
	payload := []byte(`[{"a": 1, "b": 2}]`)
	_, err := Load(payload, FormatCSV)
	require.Error(t, err)

	table, err := Load(payload, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, table.NumRows())
}

func TestNumericParsing(t *testing.T) {
	csv := []byte("Amount,Label\n\"1,234.56\",a\n$99.10,b\n-5,c\n")
	table, err := Load(csv, FormatCSV)
	require.NoError(t, err)

	col, ok := table.Column("Amount")
	require.True(t, ok)
	require.Equal(t, KindNumeric, col.Kind)

	v, ok := table.Float("Amount", 0)
	require.True(t, ok)
	assert.InDelta(t, 1234.56, v, 1e-9)
	v, _ = table.Float("Amount", 1)
	assert.InDelta(t, 99.10, v, 1e-9)
	v, _ = table.Float("Amount", 2)
	assert.InDelta(t, -5, v, 1e-9)
}

func TestMixedColumnStaysCategorical(t *testing.T) {
	csv := []byte("v\n12\nhello\n14\n")
	table, err := Load(csv, FormatCSV)
	require.NoError(t, err)
	col, _ := table.Column("v")
	assert.Equal(t, KindCategorical, col.Kind)
}

func TestSelectIsAView(t *testing.T) {
	table, err := Load(salesCSV, FormatAuto)
	require.NoError(t, err)

	view := table.Select([]int{0, 2, 4})
	assert.Equal(t, 3, view.NumRows())
	assert.Equal(t, 5, table.NumRows(), "source row count unchanged")
	assert.Equal(t, "East", view.String("Region", 1))

	// Nested selection composes through to physical rows.
	inner := view.Select([]int{2})
	assert.Equal(t, "North", inner.String("Region", 0))
	assert.Equal(t, []string{"North", "East"}, view.DistinctValues("Region"))
}

func TestDistinctAndRanges(t *testing.T) {
	table, err := Load(salesCSV, FormatAuto)
	require.NoError(t, err)

	assert.Equal(t, 4, table.DistinctCount("Region"))

	min, max, ok := table.FloatRange("Sales")
	require.True(t, ok)
	assert.InDelta(t, 700.0, min, 1e-9)
	assert.InDelta(t, 1500.25, max, 1e-9)

	lo, hi, ok := table.TimeRange("Date")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), lo)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), hi)
}

func TestCoerceDatetime(t *testing.T) {
	// "Jan 2, 2026" style parses, but only some parsers agree — force a
	// categorical column by mixing layouts, then coerce.
	csv := []byte("When,V\n2026-01-05,1\nJan-2026,2\n")
	table, err := Load(csv, FormatCSV)
	require.NoError(t, err)

	col, _ := table.Column("When")
	require.Equal(t, KindDatetime, col.Kind, "both layouts parse, inferred directly")

	csv2 := []byte("When,V\n2026-01-05,1\nnot a date,2\n")
	table2, err := Load(csv2, FormatCSV)
	require.NoError(t, err)
	col2, _ := table2.Column("When")
	require.Equal(t, KindCategorical, col2.Kind)
	assert.False(t, table2.CoerceDatetime("When"), "unparseable value blocks coercion")
	assert.Equal(t, KindCategorical, col2.Kind)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Unit Price", DisplayName("unit_price"))
	assert.Equal(t, "Sales", DisplayName("Sales"))
	assert.Equal(t, "Order ID", DisplayName("order ID"))
}
