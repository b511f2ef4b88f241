package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// TYPE INFERENCE — Raw Cell Grid → Typed Columns
// ============================================================================
// A column is datetime when every non-null value parses under the
// permissive date parser; numeric when every non-null value parses as a
// number; boolean when every non-null value is a true/false token;
// otherwise categorical.
// ============================================================================

// nullToken reports whether a trimmed cell value counts as null.
func nullToken(s string) bool {
	switch s {
	case "", "null", "NULL", "N/A", "n/a", "None", "nan", "NaN":
		return true
	}
	return false
}

// buildColumn infers a type for one column of raw cells and builds typed
// storage for it.
func buildColumn(name string, cells []string) *Column {
	c := &Column{
		Name: name,
		raw:  make([]string, len(cells)),
		null: make([]bool, len(cells)),
	}

	nonNull := 0
	allNum, allDate, allBool := true, true, true

	for i, cell := range cells {
		v := strings.TrimSpace(cell)
		c.raw[i] = v
		if nullToken(v) {
			c.raw[i] = ""
			c.null[i] = true
			continue
		}
		nonNull++
		if allNum && !isNumeric(v) {
			allNum = false
		}
		if allDate {
			if _, err := parseDate(v); err != nil {
				allDate = false
			}
		}
		if allBool && !isBool(v) {
			allBool = false
		}
	}

	if nonNull == 0 {
		c.Kind = KindCategorical
		return c
	}

	switch {
	case allBool:
		c.Kind = KindBool
		c.bools = make([]bool, len(cells))
		for i := range c.raw {
			if !c.null[i] {
				c.bools[i] = parseBool(c.raw[i])
			}
		}
	case allDate:
		c.Kind = KindDatetime
		c.times = make([]time.Time, len(cells))
		for i := range c.raw {
			if !c.null[i] {
				c.times[i], _ = parseDate(c.raw[i])
			}
		}
	case allNum:
		c.Kind = KindNumeric
		c.nums = make([]float64, len(cells))
		for i := range c.raw {
			if !c.null[i] {
				c.nums[i] = parseNumeric(c.raw[i])
			}
		}
	default:
		c.Kind = KindCategorical
	}
	return c
}

// fromGrid builds a Table from a header row and a row-major cell grid.
// Short rows are padded with nulls; long rows are truncated.
func fromGrid(headers []string, rows [][]string) (*Table, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("no columns")
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data rows")
	}
	cols := make([]*Column, len(headers))
	for j, h := range headers {
		cells := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = row[j]
			}
		}
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", j+1)
		}
		cols[j] = buildColumn(name, cells)
	}
	return NewTable(cols)
}

// ============================================================================
// VALUE PARSERS
// ============================================================================

func isNumeric(s string) bool {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "£")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func parseNumeric(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "£")
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "yes", "no":
		return true
	}
	return false
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes":
		return true
	}
	return false
}

// dateFormats is the permissive date parser's trial list, most common
// layouts first.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"Jan-2006",
	"January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006-01",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
