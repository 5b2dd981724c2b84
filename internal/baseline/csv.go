package baseline

// csv.go - CSV serialization of stream tables and the baseline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes the per-authority stream table: one row per authority,
// one column per material, tonnes.
func (t *StreamTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"Authority"}
	for _, m := range Materials() {
		header = append(header, m.Label())
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, authority := range t.Authorities() {
		est, _ := t.Row(authority)
		row := []string{authority}
		for _, m := range Materials() {
			row = append(row, formatTonnage(est[m]))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSV writes the assembled baseline: one row per material plus the
// Total and Percent Contribution rows, one column per stream,
// kilotonnes.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"Material"}
	for _, s := range t.Streams {
		header = append(header, s.Label())
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, m := range Materials() {
		row := []string{m.Label()}
		for _, s := range t.Streams {
			row = append(row, formatTonnage(t.Cell(m, s)))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	totals := []string{TotalRowLabel}
	percent := []string{PercentRowLabel}
	for _, s := range t.Streams {
		totals = append(totals, formatTonnage(t.Total(s)))
		percent = append(percent, formatTonnage(t.Percent(s)))
	}
	if err := cw.Write(totals); err != nil {
		return fmt.Errorf("failed to write total row: %w", err)
	}
	if err := cw.Write(percent); err != nil {
		return fmt.Errorf("failed to write percent row: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

func formatTonnage(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
