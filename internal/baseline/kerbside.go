package baseline

// kerbside.go - household kerbside recycling estimator

import (
	"github.com/massflow-labs/massflow/internal/rates"
	"github.com/massflow-labs/massflow/internal/wdf"
)

// Material columns (RowText) in the Q010 kerbside recycling returns.
const (
	rowMixedGlass       = "Mixed glass"
	rowMixedPlasticBtls = "Mixed Plastic Bottles"
	rowPlastics         = "Plastics"
	rowSteelCans        = "Steel cans"
	rowAluminiumCans    = "Aluminium cans"
	rowMixedCans        = "Mixed cans"
	rowCartons          = "Composite food and beverage cartons"
)

// Garden and food waste columns are excluded from the dry recycling sum.
var organicColumns = []string{
	"Green garden waste only",
	"Mixed garden and food waste",
	"Waste food only",
}

// EstimateKerbsideRecycling estimates DRS tonnage collected through
// household kerbside recycling.
//
// Per authority, quarters are summed, organic columns are dropped, and
// the dry recycling sum (including tonnage collected for reuse) feeds the
// comingled fallback rates. Material-specific columns take precedence
// over the fallbacks; "Mixed cans" takes precedence over the single-metal
// columns unless the authority's mixed-cans returns are unusable.
func EstimateKerbsideRecycling(ds *wdf.Dataset, rt *rates.Table) *StreamTable {
	q010 := ds.Question(wdf.QuestionKerbsideRecycling)

	recycled := q010.Column(wdf.ColRecyclingTonnage).PivotByMaterial().SumByAuthority()

	// Reuse tonnage joins the dry recycling sum; authorities without a
	// reuse return contribute zero.
	reuse := make(map[string]float64)
	for authority, vals := range q010.Column(wdf.ColReuseTonnage).PivotByMaterial().SumByAuthority() {
		reuse[authority] = vals.Sum()
	}

	table := NewStreamTable(KerbsideRecycling)
	for authority, vals := range recycled {
		vals = vals.Clone()
		vals.Drop(organicColumns...)
		dry := vals.Sum() + reuse[authority]

		table.SetRow(authority, Estimate{
			GlassBottles:    kerbGlass(vals, dry, rt),
			PlasticBottles:  kerbPlastic(authority, vals, dry, rt),
			FerrousCans:     kerbFerrous(authority, vals, dry, rt),
			AluminiumCans:   kerbAluminium(authority, vals, dry, rt),
			BeverageCartons: kerbCartons(vals, dry, rt),
		})
	}
	return table
}

func kerbGlass(vals wdf.Values, dry float64, rt *rates.Table) float64 {
	if vals.Has(rowMixedGlass) {
		return vals[rowMixedGlass] * rt.Kerbside.MixedGlass
	}
	return dry * rt.Kerbside.ComingledGlass
}

func kerbPlastic(authority string, vals wdf.Values, dry float64, rt *rates.Table) float64 {
	// Film-plastics authorities report film inside "Plastics", so that
	// column wins even over "Mixed Plastic Bottles".
	if rt.UsesFilmPlastics(authority) {
		if vals.Has(rowPlastics) {
			return vals[rowPlastics] * rt.Kerbside.FilmPlastics
		}
		return dry * rt.Kerbside.ComingledPlastics
	}
	if vals.Has(rowMixedPlasticBtls) {
		return vals[rowMixedPlasticBtls] * rt.Kerbside.MixedPlasticBottles
	}
	if vals.Has(rowPlastics) {
		return vals[rowPlastics] * rt.Kerbside.DensePlastics
	}
	return dry * rt.Kerbside.ComingledPlastics
}

func kerbFerrous(authority string, vals wdf.Values, dry float64, rt *rates.Table) float64 {
	if vals.Has(rowMixedCans) && !rt.HasIncompleteMixedCans(authority) {
		return vals[rowMixedCans] * rt.Kerbside.MixedCansFerrousShare * rt.Kerbside.SteelCans
	}
	if vals.Has(rowSteelCans) {
		return vals[rowSteelCans] * rt.Kerbside.SteelCans
	}
	return dry * rt.Kerbside.ComingledFerrous
}

func kerbAluminium(authority string, vals wdf.Values, dry float64, rt *rates.Table) float64 {
	if vals.Has(rowMixedCans) && !rt.HasIncompleteMixedCans(authority) {
		return vals[rowMixedCans] * rt.Kerbside.MixedCansAluminiumShare * rt.Kerbside.AluminiumCans
	}
	if vals.Has(rowAluminiumCans) {
		return vals[rowAluminiumCans] * rt.Kerbside.AluminiumCans
	}
	return dry * rt.Kerbside.ComingledAluminium
}

func kerbCartons(vals wdf.Values, dry float64, rt *rates.Table) float64 {
	// The carton column, where reported, is already DRS eligible.
	if vals.Has(rowCartons) {
		return vals[rowCartons]
	}
	return dry * rt.Kerbside.ComingledCartons
}
