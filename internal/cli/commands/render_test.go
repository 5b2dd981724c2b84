package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massflow-labs/massflow/internal/baseline"
)

func TestRenderer_EffectiveMode(t *testing.T) {
	var buf bytes.Buffer

	// Explicit modes pass through.
	assert.Equal(t, ModeJSON, NewRenderer(&buf, ModeJSON).EffectiveMode())
	assert.Equal(t, ModeCSV, NewRenderer(&buf, ModeCSV).EffectiveMode())

	// Auto on a non-TTY writer renders markdown.
	assert.Equal(t, ModeMarkdown, NewRenderer(&buf, ModeAuto).EffectiveMode())
	assert.Equal(t, ModeMarkdown, NewRenderer(&buf, "").EffectiveMode())
}

func TestRenderer_Grid_CSV(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, ModeCSV)

	require.NoError(t, r.Grid([]string{"Name", "Value"}, [][]string{{"a", "1"}, {"b", "2"}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Value", lines[0])
	assert.Equal(t, "a,1", lines[1])
}

func TestRenderer_Grid_JSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, ModeJSON)

	require.NoError(t, r.Grid([]string{"Name", "Value"}, [][]string{{"a", "1"}}))

	var out []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0]["Name"])
	assert.Equal(t, "1", out[0]["Value"])
}

func TestRenderer_Grid_Markdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, ModeMarkdown)

	require.NoError(t, r.Grid([]string{"Name"}, [][]string{{"a"}}))
	assert.Contains(t, buf.String(), "| Name |")
	assert.Contains(t, buf.String(), "| a |")
}

func assembledTable(t *testing.T) *baseline.Table {
	t.Helper()
	var tables []*baseline.StreamTable
	for _, s := range baseline.Streams() {
		st := baseline.NewStreamTable(s)
		st.SetRow("Cardiff Council", baseline.Estimate{baseline.GlassBottles: 1000})
		tables = append(tables, st)
	}
	table, err := baseline.Assemble(tables...)
	require.NoError(t, err)
	return table
}

func TestBaselineGrid(t *testing.T) {
	header, rows := BaselineGrid(assembledTable(t))

	require.Len(t, header, 1+len(baseline.Streams()))
	assert.Equal(t, "Material", header[0])
	assert.Equal(t, "Household Kerbside Recycling", header[1])

	require.Len(t, rows, len(baseline.Materials())+2)
	assert.Equal(t, "DRS Glass Bottles", rows[0][0])
	assert.Equal(t, "1.0000", rows[0][1])
	assert.Equal(t, baseline.TotalRowLabel, rows[len(rows)-2][0])
	assert.Equal(t, baseline.PercentRowLabel, rows[len(rows)-1][0])
}

func TestStreamGrid(t *testing.T) {
	st := baseline.NewStreamTable(baseline.Litter)
	st.SetRow("Cardiff Council", baseline.Estimate{baseline.PlasticBottles: 12.5})

	header, rows := StreamGrid(st)
	assert.Equal(t, "Authority", header[0])
	require.Len(t, rows, 1)
	assert.Equal(t, "Cardiff Council", rows[0][0])
	assert.Equal(t, "12.5000", rows[0][2])
}
