package baseline

// table.go - per-stream estimate tables and the assembled baseline

import (
	"fmt"
	"math"
	"sort"
)

// Estimate holds the DRS tonnage estimated for one authority.
type Estimate map[Material]float64

// StreamTable holds per-authority DRS estimates for one stream, in
// tonnes.
type StreamTable struct {
	Stream Stream
	rows   map[string]Estimate
}

// NewStreamTable creates an empty table for the stream.
func NewStreamTable(s Stream) *StreamTable {
	return &StreamTable{Stream: s, rows: make(map[string]Estimate)}
}

// SetRow records an authority's estimate. Negative values clamp to zero;
// an estimator never emits negative tonnage.
func (t *StreamTable) SetRow(authority string, e Estimate) {
	clamped := make(Estimate, len(e))
	for m, v := range e {
		if v < 0 {
			v = 0
		}
		clamped[m] = v
	}
	t.rows[authority] = clamped
}

// Row returns an authority's estimate, if present.
func (t *StreamTable) Row(authority string) (Estimate, bool) {
	e, ok := t.rows[authority]
	return e, ok
}

// Authorities returns the sorted authority names in the table.
func (t *StreamTable) Authorities() []string {
	out := make([]string, 0, len(t.rows))
	for a := range t.rows {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of authority rows.
func (t *StreamTable) Len() int {
	return len(t.rows)
}

// Totals sums each material across all authorities, in tonnes.
func (t *StreamTable) Totals() Estimate {
	totals := make(Estimate, len(Materials()))
	for _, m := range Materials() {
		totals[m] = 0
	}
	for _, e := range t.rows {
		for m, v := range e {
			totals[m] += v
		}
	}
	return totals
}

// Table is the assembled mass-flow baseline: one row per material, one
// column per stream, in kilotonnes, with Total and Percent Contribution
// summary rows.
type Table struct {
	Streams []Stream
	cells   map[Material]map[Stream]float64
	totals  map[Stream]float64
	percent map[Stream]float64
}

// Summary row labels in the rendered table.
const (
	TotalRowLabel   = "Total"
	PercentRowLabel = "Percent Contribution"
)

// Assemble builds the baseline table from per-stream estimates. Each
// stream's authority rows are summed and converted to kilotonnes. Streams
// appear as columns in canonical order; each stream may appear once.
func Assemble(tables ...*StreamTable) (*Table, error) {
	byStream := make(map[Stream]*StreamTable, len(tables))
	for _, st := range tables {
		if _, dup := byStream[st.Stream]; dup {
			return nil, fmt.Errorf("duplicate stream table: %s", st.Stream.Name())
		}
		byStream[st.Stream] = st
	}

	t := &Table{
		cells:   make(map[Material]map[Stream]float64),
		totals:  make(map[Stream]float64),
		percent: make(map[Stream]float64),
	}
	for _, m := range Materials() {
		t.cells[m] = make(map[Stream]float64)
	}

	for _, s := range Streams() {
		st, ok := byStream[s]
		if !ok {
			continue
		}
		t.Streams = append(t.Streams, s)

		totals := st.Totals()
		for _, m := range Materials() {
			kt := totals[m] / 1000 // tonnes -> kilotonnes
			t.cells[m][s] = kt
			t.totals[s] += kt
		}
	}

	var grand float64
	for _, s := range t.Streams {
		grand += t.totals[s]
	}
	for _, s := range t.Streams {
		if grand > 0 {
			t.percent[s] = t.totals[s] / grand * 100
		} else {
			t.percent[s] = 0
		}
	}

	return t, nil
}

// Cell returns the kilotonnes of a material in a stream.
func (t *Table) Cell(m Material, s Stream) float64 {
	return t.cells[m][s]
}

// Total returns a stream's Total row value.
func (t *Table) Total(s Stream) float64 {
	return t.totals[s]
}

// Percent returns a stream's Percent Contribution row value.
func (t *Table) Percent(s Stream) float64 {
	return t.percent[s]
}

// GrandTotal returns the sum of all stream totals, in kilotonnes.
func (t *Table) GrandTotal() float64 {
	var grand float64
	for _, s := range t.Streams {
		grand += t.totals[s]
	}
	return grand
}

// Check verifies the table's summary rows: material cells sum to each
// stream's Total, and Percent Contribution sums to 100 when the grand
// total is nonzero.
func (t *Table) Check() error {
	const eps = 1e-9
	for _, s := range t.Streams {
		var sum float64
		for _, m := range Materials() {
			sum += t.cells[m][s]
		}
		if math.Abs(sum-t.totals[s]) > eps {
			return fmt.Errorf("stream %s: cells sum to %v, total is %v", s.Name(), sum, t.totals[s])
		}
	}

	if t.GrandTotal() > 0 {
		var pct float64
		for _, s := range t.Streams {
			pct += t.percent[s]
		}
		if math.Abs(pct-100) > 1e-6 {
			return fmt.Errorf("percent contribution sums to %v, want 100", pct)
		}
	}
	return nil
}

// RowLabels returns all row labels in display order, summary rows last.
func (t *Table) RowLabels() []string {
	out := make([]string, 0, len(Materials())+2)
	for _, m := range Materials() {
		out = append(out, m.Label())
	}
	return append(out, TotalRowLabel, PercentRowLabel)
}
