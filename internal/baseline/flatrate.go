package baseline

// flatrate.go - flat-rate stream estimators (HWRC, commercial, litter)
// and the derived environment leftover stream

import (
	"github.com/massflow-labs/massflow/internal/rates"
	"github.com/massflow-labs/massflow/internal/wdf"
)

// EstimateHWRC estimates DRS tonnage deposited at household waste
// recycling centres, from the civic amenity row of the waste returns.
func EstimateHWRC(ds *wdf.Dataset, rt *rates.Table) *StreamTable {
	return estimateFlatRate(ds, wdf.RowCivicAmenity, rt.HWRC, HWRC)
}

// EstimateCommercial estimates DRS tonnage in collected commercial and
// industrial waste.
func EstimateCommercial(ds *wdf.Dataset, rt *rates.Table) *StreamTable {
	return estimateFlatRate(ds, wdf.RowCommercial, rt.Commercial, Commercial)
}

// EstimateLitter estimates DRS tonnage recovered through street
// cleaning.
func EstimateLitter(ds *wdf.Dataset, rt *rates.Table) *StreamTable {
	return estimateFlatRate(ds, wdf.RowStreetCleaning, rt.Litter, Litter)
}

func estimateFlatRate(ds *wdf.Dataset, baseRow string, pm rates.PerMaterial, stream Stream) *StreamTable {
	base := ds.Question(wdf.QuestionWasteCollected).
		Column(wdf.ColTonnage).
		Row(baseRow).
		SumDataByAuthority()

	table := NewStreamTable(stream)
	for authority, tonnage := range base {
		table.SetRow(authority, estimateFromBase(tonnage, pm))
	}
	return table
}

// EstimateEnvironmentLeftover derives the environment leftover stream
// from the litter estimate: for every tonne recovered by street
// cleaning, the escape ratios give the tonnage assumed never collected
// at all.
func EstimateEnvironmentLeftover(litter *StreamTable, rt *rates.Table) *StreamTable {
	esc := rt.EnvironmentEscape
	table := NewStreamTable(EnvironmentLeftover)
	for _, authority := range litter.Authorities() {
		row, _ := litter.Row(authority)
		table.SetRow(authority, Estimate{
			GlassBottles:    row[GlassBottles] * esc.GlassBottles,
			PlasticBottles:  row[PlasticBottles] * esc.PlasticBottles,
			FerrousCans:     row[FerrousCans] * esc.FerrousCans,
			AluminiumCans:   row[AluminiumCans] * esc.AluminiumCans,
			BeverageCartons: row[BeverageCartons] * esc.BeverageCartons,
		})
	}
	return table
}
