package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ============================================================================
// DECODERS — Byte Payload → Table
// ============================================================================
// Load attempts decoders in a fixed priority order (CSV, JSON, Excel) when
// no explicit format hint is given. The first decoder that parses without
// error wins — sniff by trial, not content-based detection. When every
// attempt fails the typed failures are aggregated into an
// UnsupportedFormatError for diagnostics.
// ============================================================================

// Format is an explicit decoder hint.
type Format string

const (
	FormatAuto  Format = ""
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatExcel Format = "excel"
)

// UnsupportedFormatError is returned when no decoder accepts the payload.
// Attempts records the per-decoder failure for diagnostics.
type UnsupportedFormatError struct {
	Attempts map[Format]error
}

func (e *UnsupportedFormatError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, f := range []Format{FormatCSV, FormatJSON, FormatExcel} {
		if err, ok := e.Attempts[f]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", f, err))
		}
	}
	return "unsupported data format (" + strings.Join(parts, "; ") + ")"
}

type decoder func([]byte) (*Table, error)

var decoders = []struct {
	format Format
	decode decoder
}{
	{FormatCSV, decodeCSV},
	{FormatJSON, decodeJSON},
	{FormatExcel, decodeExcel},
}

// Load decodes a byte payload into a Table. With FormatAuto the decoders
// are tried in priority order; with an explicit hint only that decoder
// runs. Pure transform — no I/O, no shared state.
func Load(data []byte, hint Format) (*Table, error) {
	if hint != FormatAuto {
		for _, d := range decoders {
			if d.format == hint {
				t, err := d.decode(data)
				if err != nil {
					return nil, &UnsupportedFormatError{Attempts: map[Format]error{hint: err}}
				}
				return t, nil
			}
		}
		return nil, &UnsupportedFormatError{Attempts: map[Format]error{hint: fmt.Errorf("unknown format hint")}}
	}

	attempts := make(map[Format]error, len(decoders))
	for _, d := range decoders {
		t, err := d.decode(data)
		if err == nil {
			return t, nil
		}
		attempts[d.format] = err
	}
	return nil, &UnsupportedFormatError{Attempts: attempts}
}

// ============================================================================
// CSV
// ============================================================================

func decodeCSV(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read headers: %w", err)
	}
	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, row)
	}
	return fromGrid(headers, rows)
}

// ============================================================================
// JSON — array of flat objects
// ============================================================================

func decodeJSON(data []byte) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var objects []map[string]any
	if err := dec.Decode(&objects); err != nil {
		return nil, fmt.Errorf("decode array: %w", err)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("empty array")
	}

	// Column order follows first appearance across records.
	var headers []string
	seen := make(map[string]bool)
	for _, obj := range objects {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}

	rows := make([][]string, len(objects))
	for i, obj := range objects {
		row := make([]string, len(headers))
		for j, h := range headers {
			row[j] = jsonCell(obj[h])
		}
		rows[i] = row
	}
	return fromGrid(headers, rows)
}

func jsonCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

// ============================================================================
// EXCEL — first sheet via excelize
// ============================================================================

func decodeExcel(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	return fromGrid(rows[0], rows[1:])
}
