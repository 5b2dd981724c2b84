// Package wdf models WasteDataFlow quarterly returns.
// It decodes the raw CSV export and provides the filtering, pivoting and
// per-authority aggregation the mass-flow estimators are built on.
package wdf

// Well-known question numbers in the returns this pipeline consumes.
const (
	// QuestionKerbsideRecycling covers household kerbside collections
	// (recycling, reuse and rejected tonnage, split by material).
	QuestionKerbsideRecycling = "Q010"
	// QuestionWasteCollected covers collected waste tonnage by source
	// (regular collection, civic amenity, street cleaning, commercial).
	QuestionWasteCollected = "Q023"
)

// Column labels (ColText) used by the estimators.
const (
	ColRecyclingTonnage = "Tonnage collected for recycling"
	ColReuseTonnage     = "Tonnage Collected for Reuse"
	ColRejectedTonnage  = "Tonnage collected for recycling but actually rejected/disposed"
	ColTonnage          = "Tonnage"
)

// Row labels (RowText) for Q023 waste sources.
const (
	RowRegularCollection = "Collected household waste : Regular Collection"
	RowCivicAmenity      = "Collected household waste : Civic Amenity sites"
	RowStreetCleaning    = "Collected household waste : Street Cleaning"
	RowCommercial        = "Collected non-household waste : Commercial & industrial"
)

// Record is a single cell of a WasteDataFlow return: one authority, one
// quarter, one question row/column intersection.
//
// Data carries the reported tonnage. A blank cell in the export means the
// authority did not report that material, which is not the same as
// reporting zero; Present distinguishes the two.
type Record struct {
	Authority      string
	Period         string
	QuestionNumber string
	QuText         string
	RowText        string
	ColText        string
	MaterialGroup  string
	Data           float64
	Present        bool
}

// Dataset is an immutable view over a set of records. Filter methods
// return new views sharing the underlying slice.
type Dataset struct {
	records []Record
}

// NewDataset wraps records in a Dataset.
func NewDataset(records []Record) *Dataset {
	return &Dataset{records: records}
}

// Records returns the records in this view.
func (d *Dataset) Records() []Record {
	return d.records
}

// Len returns the number of records in this view.
func (d *Dataset) Len() int {
	return len(d.records)
}
