package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/massflow-labs/massflow/internal/baseline"
)

// NewStreamsCommand creates the streams command.
func NewStreamsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streams [stream]",
		Short: "Show per-authority estimates for a waste stream",
		Long: `List the waste streams, or run the pipeline and show one stream's
per-authority estimates in tonnes.`,
		Example: `  # List the streams
  massflow streams

  # Per-authority kerbside recycling estimates
  massflow streams hhkerb_recycling

  # As CSV for a spreadsheet
  massflow streams litter -o csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listStreams(cmd)
			}
			return showStream(cmd, args[0])
		},
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			var names []string
			for _, s := range baseline.Streams() {
				names = append(names, s.Name())
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func listStreams(cmd *cobra.Command) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	header := []string{"Name", "Stream"}
	var rows [][]string
	for _, s := range baseline.Streams() {
		rows = append(rows, []string{s.Name(), s.Label()})
	}
	return cmdCtx.Renderer.Grid(header, rows)
}

func showStream(cmd *cobra.Command, name string) error {
	stream, ok := baseline.StreamByName(name)
	if !ok {
		var names []string
		for _, s := range baseline.Streams() {
			names = append(names, s.Name())
		}
		return fmt.Errorf("unknown stream %q (one of: %s)", name, strings.Join(names, ", "))
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := cmdCtx.Engine.Run(cmd.Context()); err != nil {
		return err
	}

	st, ok := cmdCtx.Engine.StreamTable(stream.Name())
	if !ok {
		return fmt.Errorf("stream %s not computed", stream.Name())
	}
	return cmdCtx.Renderer.Grid(StreamGrid(st))
}
