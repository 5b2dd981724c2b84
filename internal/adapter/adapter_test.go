package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	names := Registered()
	assert.Contains(t, names, "duckdb")
	assert.Contains(t, names, "postgres")

	src, err := New(Config{Type: "duckdb"})
	require.NoError(t, err)
	assert.Equal(t, "duckdb", src.Name())

	src, err = New(Config{Type: "postgres"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", src.Name())
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(Config{Type: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown adapter type")
}

func TestConfig_ReturnsTable(t *testing.T) {
	assert.Equal(t, DefaultReturnsTable, Config{}.ReturnsTable())
	assert.Equal(t, "custom", Config{Table: "custom"}.ReturnsTable())
}

func TestValidIdent(t *testing.T) {
	assert.NoError(t, validIdent("raw_returns"))
	assert.NoError(t, validIdent("Returns2015"))
	assert.Error(t, validIdent(""))
	assert.Error(t, validIdent("bad-name"))
	assert.Error(t, validIdent(`raw"; DROP TABLE runs; --`))
}
