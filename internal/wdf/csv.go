package wdf

// csv.go - decoding of the raw WasteDataFlow CSV export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Columns the estimators consume. Everything else in the export (the
// collation bookkeeping: CollateText, RowOrder, ColOrder, RowIdent,
// ColIdent, CollateID, columngroup) is ignored.
var wantedColumns = map[string]bool{
	"Authority":      true,
	"Period":         true,
	"QuestionNumber": true,
	"QuText":         true,
	"RowText":        true,
	"ColText":        true,
	"MaterialGroup":  true,
	"Data":           true,
}

// ReadCSV reads a raw WasteDataFlow export from path.
func ReadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw export: %w", err)
	}
	defer func() { _ = f.Close() }()

	ds, err := ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// ReadAll decodes a raw WasteDataFlow export. The first row must be a
// header naming at least Authority, Period, QuestionNumber, RowText,
// ColText and Data. Blank Data cells decode as absent, not zero.
func ReadAll(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // header width is authoritative, checked below

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := make(map[string]int, len(wantedColumns))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if wantedColumns[name] {
			idx[name] = i
		}
	}
	for _, required := range []string{"Authority", "Period", "QuestionNumber", "RowText", "ColText", "Data"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing required column %q in header", required)
		}
	}

	var records []Record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		line++

		field := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec := Record{
			Authority:      authorityField(row, idx),
			Period:         field("Period"),
			QuestionNumber: field("QuestionNumber"),
			QuText:         field("QuText"),
			RowText:        field("RowText"),
			ColText:        field("ColText"),
			MaterialGroup:  field("MaterialGroup"),
		}

		raw := field("Data")
		if raw != "" {
			v, err := parseTonnage(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad Data value %q: %w", line, raw, err)
			}
			rec.Data = v
			rec.Present = true
		}

		records = append(records, rec)
	}

	return NewDataset(records), nil
}

// authorityField reads the Authority cell without trimming. The source
// system carries authority names verbatim, including stray whitespace
// (e.g. "City  and County of Swansea "), and the estimators key special
// cases on those exact strings.
func authorityField(row []string, idx map[string]int) string {
	i, ok := idx["Authority"]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseTonnage parses a reported tonnage, tolerating thousands separators.
func parseTonnage(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}
