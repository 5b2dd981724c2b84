package wdf

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	ds, err := ReadCSV(filepath.Join("testdata", "sample_returns.csv"))
	require.NoError(t, err)
	require.Equal(t, 8, ds.Len())

	recs := ds.Records()
	assert.Equal(t, "Cardiff Council", recs[0].Authority)
	assert.Equal(t, "Apr 14 - Jun 14", recs[0].Period)
	assert.Equal(t, QuestionKerbsideRecycling, recs[0].QuestionNumber)
	assert.Equal(t, "Mixed glass", recs[0].RowText)
	assert.Equal(t, ColRecyclingTonnage, recs[0].ColText)

	// Thousands separators parse.
	assert.True(t, recs[0].Present)
	assert.InDelta(t, 1200.5, recs[0].Data, 1e-9)
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join("testdata", "no_such_file.csv"))
	require.Error(t, err)
}

func TestReadAll_BlankDataIsAbsent(t *testing.T) {
	ds, err := ReadCSV(filepath.Join("testdata", "sample_returns.csv"))
	require.NoError(t, err)

	var paper *Record
	for i, r := range ds.Records() {
		if r.RowText == "Paper" {
			paper = &ds.Records()[i]
		}
	}
	require.NotNil(t, paper)
	assert.False(t, paper.Present, "blank Data cell must decode as absent, not zero")
	assert.Zero(t, paper.Data)
}

func TestReadAll_AuthorityNotTrimmed(t *testing.T) {
	ds, err := ReadCSV(filepath.Join("testdata", "sample_returns.csv"))
	require.NoError(t, err)

	found := false
	for _, r := range ds.Records() {
		if r.Authority == "City  and County of Swansea " {
			found = true
		}
	}
	assert.True(t, found, "authority names must be kept verbatim, whitespace included")
}

func TestReadAll_MissingRequiredColumn(t *testing.T) {
	in := "Authority,Period,RowText,ColText,Data\nA,P,R,C,1\n"
	_, err := ReadAll(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QuestionNumber")
}

func TestReadAll_BadData(t *testing.T) {
	in := "Authority,Period,QuestionNumber,RowText,ColText,Data\nA,P,Q010,R,C,notanumber\n"
	_, err := ReadAll(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}
