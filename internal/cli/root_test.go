package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massflow-labs/massflow/internal/cli/config"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"baseline", "streams", "ingest", "rates", "runs", "dag", "query", "version", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_Version(t *testing.T) {
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "massflow v")
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	root := NewRootCmd()
	flags := root.PersistentFlags()

	for _, name := range []string{"config", "raw", "rates", "state", "env", "export-dir", "exclude-periods", "verbose", "output"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
}
