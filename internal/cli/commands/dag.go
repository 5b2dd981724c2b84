package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewDAGCommand creates the dag command.
func NewDAGCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dag",
		Short: "Show the stage dependency graph",
		Long: `Show the pipeline stages grouped into execution levels.

Stages in the same level have no dependencies on each other and run
concurrently.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDAG(cmd)
		},
	}
}

func runDAG(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	graph := cmdCtx.Engine.Graph()
	r := cmdCtx.Renderer

	levels, err := graph.Levels()
	if err != nil {
		return err
	}

	r.Println("Stage graph (execution levels):")
	r.Println()
	for i, level := range levels {
		r.Printf("Level %d:\n", i)
		for _, stage := range level {
			r.Printf("  %s\n", stage)
			if deps := graph.Deps(stage); len(deps) > 0 {
				r.Printf("    depends on: %s\n", strings.Join(deps, ", "))
			}
			if dependents := graph.Dependents(stage); len(dependents) > 0 {
				r.Printf("    used by: %s\n", strings.Join(dependents, ", "))
			}
		}
		r.Println()
	}

	r.Printf("Total: %d stages\n", graph.Len())
	return nil
}
