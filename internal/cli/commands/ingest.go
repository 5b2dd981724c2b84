package commands

import (
	"github.com/spf13/cobra"
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Load the raw export into the configured database source",
		Long: `Load the WasteDataFlow CSV export into the configured source table.

Requires a duckdb or postgres source in massflow.yaml. DuckDB reads the
file server-side; Postgres is loaded row by row in one transaction.`,
		Example: `  # Load data/wdf_returns.csv into the source table
  massflow ingest

  # Load a specific export
  massflow ingest --raw exports/2015_returns.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cmdCtx.Engine.Ingest(cmd.Context()); err != nil {
				return err
			}
			cmdCtx.Renderer.Printf("Ingested %s\n", cmdCtx.Cfg.RawFile)
			return nil
		},
	}
}
