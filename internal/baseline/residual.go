package baseline

// residual.go - household kerbside residual waste estimator

import (
	"github.com/massflow-labs/massflow/internal/rates"
	"github.com/massflow-labs/massflow/internal/wdf"
)

// EstimateKerbsideResidual estimates DRS tonnage left in regular
// household waste collections.
//
// The residual base per authority is the regular-collection tonnage plus
// any recycling tonnage that was collected but rejected and disposed
// (positive rejected values only; an authority without a rejected return
// contributes zero). Flat residual composition rates then apportion the
// base across materials.
func EstimateKerbsideResidual(ds *wdf.Dataset, rt *rates.Table) *StreamTable {
	regular := ds.Question(wdf.QuestionWasteCollected).
		Column(wdf.ColTonnage).
		Row(wdf.RowRegularCollection).
		SumDataByAuthority()

	rejected := ds.Question(wdf.QuestionKerbsideRecycling).
		Column(wdf.ColRejectedTonnage).
		Positive().
		SumDataByAuthority()

	table := NewStreamTable(KerbsideResidual)
	for authority, tonnage := range regular {
		base := tonnage + rejected[authority]
		table.SetRow(authority, estimateFromBase(base, rt.Residual))
	}
	return table
}

// estimateFromBase apportions a stream's base tonnage across materials
// using flat per-material rates.
func estimateFromBase(base float64, pm rates.PerMaterial) Estimate {
	return Estimate{
		GlassBottles:    base * pm.GlassBottles,
		PlasticBottles:  base * pm.PlasticBottles,
		FerrousCans:     base * pm.FerrousCans,
		AluminiumCans:   base * pm.AluminiumCans,
		BeverageCartons: base * pm.BeverageCartons,
	}
}
