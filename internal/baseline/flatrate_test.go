package baseline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massflow-labs/massflow/internal/rates"
	"github.com/massflow-labs/massflow/internal/wdf"
)

func TestEstimateKerbsideResidual(t *testing.T) {
	rt := rates.Default()
	ds := wdf.NewDataset([]wdf.Record{
		q023("A", "Q1", wdf.RowRegularCollection, 10000),
		q023("A", "Q2", wdf.RowRegularCollection, 5000),
		// Rejected recycling joins the residual base, positive values only.
		q010("A", "Q1", "Mixed glass", wdf.ColRejectedTonnage, 500),
		q010("A", "Q2", "Mixed glass", wdf.ColRejectedTonnage, -100),
	})

	st := EstimateKerbsideResidual(ds, rt)
	row, ok := st.Row("A")
	require.True(t, ok)

	base := 15000.0 + 500.0
	assert.InDelta(t, base*0.0204, row[GlassBottles], 1e-9)
	assert.InDelta(t, base*0.0151, row[PlasticBottles], 1e-9)
	assert.InDelta(t, base*0.001554, row[FerrousCans], 1e-9)
	assert.InDelta(t, base*0.003255, row[AluminiumCans], 1e-9)
	assert.InDelta(t, base*0.0037, row[BeverageCartons], 1e-9)
}

func TestEstimateKerbsideResidual_NoRejectedReturn(t *testing.T) {
	rt := rates.Default()
	ds := wdf.NewDataset([]wdf.Record{
		q023("A", "Q1", wdf.RowRegularCollection, 1000),
	})

	row, ok := EstimateKerbsideResidual(ds, rt).Row("A")
	require.True(t, ok)
	assert.InDelta(t, 1000*0.0204, row[GlassBottles], 1e-9)
}

func TestEstimateFlatRateStreams(t *testing.T) {
	rt := rates.Default()
	ds := wdf.NewDataset([]wdf.Record{
		q023("A", "Q1", wdf.RowCivicAmenity, 2000),
		q023("A", "Q1", wdf.RowCommercial, 3000),
		q023("A", "Q1", wdf.RowStreetCleaning, 400),
	})

	hwrc, _ := EstimateHWRC(ds, rt).Row("A")
	assert.InDelta(t, 2000*0.0248, hwrc[GlassBottles], 1e-9)

	commercial, _ := EstimateCommercial(ds, rt).Row("A")
	assert.InDelta(t, 3000*0.0117, commercial[PlasticBottles], 1e-9)

	litter, _ := EstimateLitter(ds, rt).Row("A")
	assert.InDelta(t, 400*0.0196, litter[AluminiumCans], 1e-9)
}

func TestEstimateFlatRate_OnlyMatchingRow(t *testing.T) {
	rt := rates.Default()
	ds := wdf.NewDataset([]wdf.Record{
		q023("A", "Q1", wdf.RowRegularCollection, 9999),
	})

	st := EstimateHWRC(ds, rt)
	assert.Zero(t, st.Len(), "authorities without a civic amenity return get no HWRC row")
}

func TestEstimateEnvironmentLeftover(t *testing.T) {
	rt := rates.Default()
	litter := NewStreamTable(Litter)
	litter.SetRow("A", Estimate{
		GlassBottles:    10,
		PlasticBottles:  20,
		FerrousCans:     2,
		AluminiumCans:   4,
		BeverageCartons: 1,
	})

	st := EstimateEnvironmentLeftover(litter, rt)
	require.Equal(t, EnvironmentLeftover, st.Stream)

	row, ok := st.Row("A")
	require.True(t, ok)
	assert.InDelta(t, 10*0.42, row[GlassBottles], 1e-9)
	assert.InDelta(t, 20*0.61, row[PlasticBottles], 1e-9)
	assert.InDelta(t, 2*0.18, row[FerrousCans], 1e-9)
	assert.InDelta(t, 4*0.27, row[AluminiumCans], 1e-9)
	assert.InDelta(t, 1*0.33, row[BeverageCartons], 1e-9)
}
