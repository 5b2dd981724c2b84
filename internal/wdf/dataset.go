package wdf

// dataset.go - filtering, pivoting and per-authority aggregation

import "sort"

// Question returns the records for one question number.
func (d *Dataset) Question(q string) *Dataset {
	return d.filter(func(r Record) bool { return r.QuestionNumber == q })
}

// Column returns the records with the given ColText.
func (d *Dataset) Column(colText string) *Dataset {
	return d.filter(func(r Record) bool { return r.ColText == colText })
}

// Row returns the records with the given RowText.
func (d *Dataset) Row(rowText string) *Dataset {
	return d.filter(func(r Record) bool { return r.RowText == rowText })
}

// ExcludePeriods drops records for the named quarters.
func (d *Dataset) ExcludePeriods(periods ...string) *Dataset {
	if len(periods) == 0 {
		return d
	}
	drop := make(map[string]bool, len(periods))
	for _, p := range periods {
		drop[p] = true
	}
	return d.filter(func(r Record) bool { return !drop[r.Period] })
}

// Positive keeps records whose reported value is present and > 0.
func (d *Dataset) Positive() *Dataset {
	return d.filter(func(r Record) bool { return r.Present && r.Data > 0 })
}

func (d *Dataset) filter(keep func(Record) bool) *Dataset {
	out := make([]Record, 0, len(d.records))
	for _, r := range d.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return NewDataset(out)
}

// Authorities returns the sorted distinct authority names in this view.
func (d *Dataset) Authorities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.records {
		if !seen[r.Authority] {
			seen[r.Authority] = true
			out = append(out, r.Authority)
		}
	}
	sort.Strings(out)
	return out
}

// Periods returns the sorted distinct periods in this view.
func (d *Dataset) Periods() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.records {
		if !seen[r.Period] {
			seen[r.Period] = true
			out = append(out, r.Period)
		}
	}
	sort.Strings(out)
	return out
}

// Values maps a material label (RowText) to a reported value. A missing
// key means the material was never reported; callers must not treat that
// as zero.
type Values map[string]float64

// Has reports whether the material was reported at all.
func (v Values) Has(material string) bool {
	_, ok := v[material]
	return ok
}

// Sum returns the sum of all values.
func (v Values) Sum() float64 {
	var total float64
	for _, x := range v {
		total += x
	}
	return total
}

// Clone returns a copy of the value map.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// Drop removes the named materials, if present.
func (v Values) Drop(materials ...string) {
	for _, m := range materials {
		delete(v, m)
	}
}

// pivotKey identifies one authority/quarter slice of a pivot.
type pivotKey struct {
	authority string
	period    string
}

// Pivot is the wide form of a dataset slice: per (authority, period),
// material label -> reported value. Duplicate cells sum.
type Pivot struct {
	cells map[pivotKey]Values
}

// PivotByMaterial pivots this view into authority/period rows keyed by
// material (RowText). Absent cells are omitted, preserving the
// reported-vs-missing distinction.
func (d *Dataset) PivotByMaterial() *Pivot {
	p := &Pivot{cells: make(map[pivotKey]Values)}
	for _, r := range d.records {
		if !r.Present {
			continue
		}
		key := pivotKey{authority: r.Authority, period: r.Period}
		vals, ok := p.cells[key]
		if !ok {
			vals = make(Values)
			p.cells[key] = vals
		}
		vals[r.RowText] += r.Data
	}
	return p
}

// SumByAuthority collapses quarters, returning per-authority material
// totals. A material is present for an authority if any quarter reported
// it.
func (p *Pivot) SumByAuthority() map[string]Values {
	out := make(map[string]Values)
	for key, vals := range p.cells {
		agg, ok := out[key.authority]
		if !ok {
			agg = make(Values)
			out[key.authority] = agg
		}
		for material, v := range vals {
			agg[material] += v
		}
	}
	return out
}

// SumDataByAuthority sums the raw Data values per authority, ignoring
// material labels. Used for single-row slices such as rejected tonnage or
// a Q023 waste source row.
func (d *Dataset) SumDataByAuthority() map[string]float64 {
	out := make(map[string]float64)
	for _, r := range d.records {
		if !r.Present {
			continue
		}
		out[r.Authority] += r.Data
	}
	return out
}
