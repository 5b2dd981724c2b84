package baseline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamByName(t *testing.T) {
	for _, s := range Streams() {
		got, ok := StreamByName(s.Name())
		require.True(t, ok, s.Name())
		assert.Equal(t, s, got)
	}

	_, ok := StreamByName("nope")
	assert.False(t, ok)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "DRS Glass Bottles", GlassBottles.Label())
	assert.Equal(t, "Household Kerbside Recycling", KerbsideRecycling.Label())
	assert.Equal(t, "hhkerb_recycling", KerbsideRecycling.Name())
	assert.Equal(t, "environment_leftover", EnvironmentLeftover.Name())
}
