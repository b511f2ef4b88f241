package dataset

import (
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// TABLE — In-Memory Columnar Dataset
// ============================================================================
// A Table is an ordered sequence of named, typed, equal-length columns.
// Created once by decoding a byte payload, immutable after the datetime
// coercion pass. Filtering produces row-index views into the same columns —
// the source is never mutated.
// ============================================================================

// Kind is the semantic type of a column.
type Kind int

const (
	KindCategorical Kind = iota
	KindNumeric
	KindDatetime
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDatetime:
		return "datetime"
	case KindBool:
		return "boolean"
	default:
		return "categorical"
	}
}

// Column holds one named column. Raw cell text is always kept; typed
// storage is populated according to Kind.
type Column struct {
	Name string
	Kind Kind

	raw   []string    // original cell text
	nums  []float64   // populated when Kind == KindNumeric
	times []time.Time // populated when Kind == KindDatetime
	bools []bool      // populated when Kind == KindBool
	null  []bool      // true where the cell is empty/null
}

// Len returns the physical number of cells in the column.
func (c *Column) Len() int { return len(c.raw) }

// Table is an ordered set of equal-length columns, optionally restricted
// to a subset of rows. A nil index means the identity view (all rows).
type Table struct {
	cols   []*Column
	byName map[string]int
	index  []int // view rows → physical rows; nil = all
}

// NewTable builds a Table from columns, enforcing unique names and equal
// lengths.
func NewTable(cols []*Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}
	byName := make(map[string]int, len(cols))
	n := cols[0].Len()
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, dup := byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if c.Len() != n {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), n)
		}
		byName[c.Name] = i
	}
	return &Table{cols: cols, byName: byName}, nil
}

// NumRows returns the number of rows visible through this view.
func (t *Table) NumRows() int {
	if t.index != nil {
		return len(t.index)
	}
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// ColumnNames returns column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or false if it does not exist.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// ColumnsOfKind returns the names of all columns with the given kind,
// preserving table order.
func (t *Table) ColumnsOfKind(k Kind) []string {
	var names []string
	for _, c := range t.cols {
		if c.Kind == k {
			names = append(names, c.Name)
		}
	}
	return names
}

// phys maps a view row to a physical row.
func (t *Table) phys(row int) int {
	if t.index != nil {
		return t.index[row]
	}
	return row
}

// IsNull reports whether the cell at (column, view row) is null.
func (t *Table) IsNull(col string, row int) bool {
	c, ok := t.Column(col)
	if !ok {
		return true
	}
	return c.null[t.phys(row)]
}

// String returns the raw cell text at (column, view row).
func (t *Table) String(col string, row int) string {
	c, ok := t.Column(col)
	if !ok {
		return ""
	}
	return c.raw[t.phys(row)]
}

// Float returns the numeric value at (column, view row). Second return is
// false for nulls and non-numeric columns.
func (t *Table) Float(col string, row int) (float64, bool) {
	c, ok := t.Column(col)
	if !ok || c.Kind != KindNumeric {
		return 0, false
	}
	p := t.phys(row)
	if c.null[p] {
		return 0, false
	}
	return c.nums[p], true
}

// Time returns the datetime value at (column, view row). Second return is
// false for nulls and non-datetime columns.
func (t *Table) Time(col string, row int) (time.Time, bool) {
	c, ok := t.Column(col)
	if !ok || c.Kind != KindDatetime {
		return time.Time{}, false
	}
	p := t.phys(row)
	if c.null[p] {
		return time.Time{}, false
	}
	return c.times[p], true
}

// Select returns a view restricted to the given view-space rows. The
// receiver and its columns are not modified.
func (t *Table) Select(rows []int) *Table {
	physical := make([]int, len(rows))
	for i, r := range rows {
		physical[i] = t.phys(r)
	}
	return &Table{cols: t.cols, byName: t.byName, index: physical}
}

// DistinctCount returns the number of distinct non-null raw values in a
// column, as seen through this view.
func (t *Table) DistinctCount(col string) int {
	return len(t.DistinctValues(col))
}

// DistinctValues returns the distinct non-null raw values of a column in
// first-seen order, as seen through this view.
func (t *Table) DistinctValues(col string) []string {
	c, ok := t.Column(col)
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for row := 0; row < t.NumRows(); row++ {
		p := t.phys(row)
		if c.null[p] {
			continue
		}
		v := c.raw[p]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// FloatRange returns the observed min and max of a numeric column through
// this view. ok is false when the column has no non-null numeric values.
func (t *Table) FloatRange(col string) (min, max float64, ok bool) {
	for row := 0; row < t.NumRows(); row++ {
		v, valid := t.Float(col, row)
		if !valid {
			continue
		}
		if !ok || v < min {
			min = v
		}
		if !ok || v > max {
			max = v
		}
		ok = true
	}
	return min, max, ok
}

// TimeRange returns the observed earliest and latest values of a datetime
// column through this view.
func (t *Table) TimeRange(col string) (min, max time.Time, ok bool) {
	for row := 0; row < t.NumRows(); row++ {
		v, valid := t.Time(col, row)
		if !valid {
			continue
		}
		if !ok || v.Before(min) {
			min = v
		}
		if !ok || v.After(max) {
			max = v
		}
		ok = true
	}
	return min, max, ok
}

// CoerceDatetime re-types a categorical column as datetime when every
// non-null value parses under the permissive date parser. Applied before
// first use (e.g., for columns referenced by date filters); a column that
// does not fully parse is left unchanged and false is returned.
func (t *Table) CoerceDatetime(col string) bool {
	c, ok := t.Column(col)
	if !ok {
		return false
	}
	if c.Kind == KindDatetime {
		return true
	}
	if c.Kind != KindCategorical {
		return false
	}
	times := make([]time.Time, len(c.raw))
	for i, v := range c.raw {
		if c.null[i] {
			continue
		}
		ts, err := parseDate(v)
		if err != nil {
			return false
		}
		times[i] = ts
	}
	c.Kind = KindDatetime
	c.times = times
	return true
}

// DisplayName derives a human-readable label from a column name:
// underscores become spaces and each word is title-cased.
func DisplayName(name string) string {
	s := strings.ReplaceAll(name, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
