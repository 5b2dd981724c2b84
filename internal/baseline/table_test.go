package baseline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamTable_SetRowClampsNegatives(t *testing.T) {
	st := NewStreamTable(Litter)
	st.SetRow("A", Estimate{GlassBottles: -5, PlasticBottles: 3})

	row, ok := st.Row("A")
	require.True(t, ok)
	assert.Zero(t, row[GlassBottles])
	assert.InDelta(t, 3, row[PlasticBottles], 1e-9)
}

func TestStreamTable_Totals(t *testing.T) {
	st := NewStreamTable(HWRC)
	st.SetRow("A", Estimate{GlassBottles: 10, AluminiumCans: 1})
	st.SetRow("B", Estimate{GlassBottles: 5})

	totals := st.Totals()
	assert.InDelta(t, 15, totals[GlassBottles], 1e-9)
	assert.InDelta(t, 1, totals[AluminiumCans], 1e-9)
	assert.Zero(t, totals[BeverageCartons])
}

func buildTestTables() []*StreamTable {
	var tables []*StreamTable
	for _, s := range Streams() {
		st := NewStreamTable(s)
		st.SetRow("A", Estimate{
			GlassBottles:    1000,
			PlasticBottles:  500,
			FerrousCans:     100,
			AluminiumCans:   200,
			BeverageCartons: 50,
		})
		tables = append(tables, st)
	}
	return tables
}

func TestAssemble(t *testing.T) {
	table, err := Assemble(buildTestTables()...)
	require.NoError(t, err)
	require.Len(t, table.Streams, len(Streams()))

	// Tonnes convert to kilotonnes.
	assert.InDelta(t, 1.0, table.Cell(GlassBottles, KerbsideRecycling), 1e-9)
	assert.InDelta(t, 0.05, table.Cell(BeverageCartons, Litter), 1e-9)

	// Each stream's total is the sum of its material cells.
	assert.InDelta(t, 1.85, table.Total(HWRC), 1e-9)

	// Identical streams each contribute an equal share.
	assert.InDelta(t, 100.0/float64(len(Streams())), table.Percent(Commercial), 1e-9)
	assert.InDelta(t, 1.85*float64(len(Streams())), table.GrandTotal(), 1e-9)

	require.NoError(t, table.Check())
}

func TestAssemble_DuplicateStream(t *testing.T) {
	_, err := Assemble(NewStreamTable(Litter), NewStreamTable(Litter))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestAssemble_SubsetOfStreams(t *testing.T) {
	st := NewStreamTable(KerbsideRecycling)
	st.SetRow("A", Estimate{GlassBottles: 2000})

	table, err := Assemble(st)
	require.NoError(t, err)
	require.Equal(t, []Stream{KerbsideRecycling}, table.Streams)
	assert.InDelta(t, 100, table.Percent(KerbsideRecycling), 1e-9)
	require.NoError(t, table.Check())
}

func TestTable_RowLabels(t *testing.T) {
	table, err := Assemble(buildTestTables()...)
	require.NoError(t, err)

	labels := table.RowLabels()
	require.Len(t, labels, len(Materials())+2)
	assert.Equal(t, "DRS Glass Bottles", labels[0])
	assert.Equal(t, TotalRowLabel, labels[len(labels)-2])
	assert.Equal(t, PercentRowLabel, labels[len(labels)-1])
}

func TestStreamTable_WriteCSV(t *testing.T) {
	st := NewStreamTable(Litter)
	st.SetRow("B Authority", Estimate{GlassBottles: 1.5})
	st.SetRow("A Authority", Estimate{PlasticBottles: 2})

	var buf bytes.Buffer
	require.NoError(t, st.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Authority,DRS Glass Bottles,DRS Plastic Bottles,DRS Ferrous Cans,DRS Aluminium Cans,DRS Beverage Cartons", lines[0])
	// Authorities come out sorted.
	assert.True(t, strings.HasPrefix(lines[1], "A Authority,"))
	assert.True(t, strings.HasPrefix(lines[2], "B Authority,1.5,"))
}

func TestTable_WriteCSV(t *testing.T) {
	table, err := Assemble(buildTestTables()...)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// Header, five materials, Total, Percent Contribution.
	require.Len(t, lines, 1+len(Materials())+2)
	assert.True(t, strings.HasPrefix(lines[0], "Material,"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-2], TotalRowLabel+","))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], PercentRowLabel+","))
}
