package rates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	rt := Default()
	require.NoError(t, rt.Validate())

	assert.InDelta(t, 0.66, rt.Kerbside.MixedGlass, 1e-9)
	assert.InDelta(t, 0.0204, rt.Residual.GlassBottles, 1e-9)
	assert.InDelta(t, 1.0, rt.Kerbside.MixedCansFerrousShare+rt.Kerbside.MixedCansAluminiumShare, 1e-9)

	assert.True(t, rt.UsesFilmPlastics("City  and County of Swansea "))
	assert.False(t, rt.UsesFilmPlastics("Cardiff Council"))
	assert.True(t, rt.HasIncompleteMixedCans("Powys County Council"))
	assert.False(t, rt.HasIncompleteMixedCans("Cardiff Council"))
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	rt, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), rt)
}

func TestLoad_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	content := `
kerbside:
  mixed_glass: 0.7
litter:
  glass_bottles: 0.05
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rt, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.7, rt.Kerbside.MixedGlass, 1e-9)
	assert.InDelta(t, 0.05, rt.Litter.GlassBottles, 1e-9)

	// Unset keys keep their defaults.
	assert.InDelta(t, 0.96, rt.Kerbside.MixedPlasticBottles, 1e-9)
	assert.InDelta(t, 0.0524, rt.Litter.PlasticBottles, 1e-9)
}

func TestLoad_InvalidRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kerbside:\n  mixed_glass: 1.5\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kerbside: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_MixedCansSplit(t *testing.T) {
	rt := Default()
	rt.Kerbside.MixedCansFerrousShare = 0.5
	rt.Kerbside.MixedCansAluminiumShare = 0.3

	err := rt.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1")
}
