package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCommand("1.2.3"))
	require.NoError(t, err)
	assert.Contains(t, out, "massflow v1.2.3")
}

func TestStreamsCommand_List(t *testing.T) {
	// The list variant needs no engine or state database.
	out, err := execute(t, NewStreamsCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "hhkerb_recycling")
	assert.Contains(t, out, "Household Kerbside Recycling")
	assert.Contains(t, out, "environment_leftover")
}

func TestStreamsCommand_UnknownStream(t *testing.T) {
	_, err := execute(t, NewStreamsCommand(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stream")
}

func TestQueryCommand_MissingStateDB(t *testing.T) {
	_, err := execute(t, NewQueryCommand(), "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state database not found")
}
