package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/massflow-labs/massflow/internal/baseline"
)

// BaselineOptions holds options for the baseline command.
type BaselineOptions struct {
	Quiet bool
}

// NewBaselineCommand creates the baseline command.
func NewBaselineCommand() *cobra.Command {
	opts := &BaselineOptions{}

	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Compute the mass-flow baseline",
		Long: `Run the full pipeline and print the baseline table.

Each waste stream is estimated per authority from the raw returns, then
the streams are summed and converted to kilotonnes. The result is one
row per deposit return scheme material, one column per stream, plus
Total and Percent Contribution rows.`,
		Example: `  # Compute and print the baseline
  massflow baseline

  # Machine-readable output
  massflow baseline -o json

  # Write per-stream CSVs as well
  massflow baseline --export-dir ./out`,
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBaseline(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress the run summary")

	return cmd
}

func runBaseline(cmd *cobra.Command, opts *BaselineOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	start := time.Now()
	run, err := cmdCtx.Engine.Run(cmd.Context())
	if err != nil {
		if run != nil {
			return fmt.Errorf("run %s failed: %w", run.ID, err)
		}
		return err
	}

	table := cmdCtx.Engine.Baseline()
	r := cmdCtx.Renderer

	if r.EffectiveMode() == ModeJSON {
		return renderBaselineJSON(r, run.ID, table)
	}

	if err := r.Grid(BaselineGrid(table)); err != nil {
		return err
	}

	if !opts.Quiet {
		r.Printf("\nRun %s: %s (%s)\n", run.ID, run.Status, time.Since(start).Round(time.Millisecond))
		if cmdCtx.Cfg.ExportDir != "" {
			r.Printf("Exports written to %s\n", cmdCtx.Cfg.ExportDir)
		}
	}
	return nil
}

// baselineOutput is the JSON shape of a computed baseline.
type baselineOutput struct {
	RunID      string                        `json:"run_id"`
	Unit       string                        `json:"unit"`
	Streams    []string                      `json:"streams"`
	Materials  map[string]map[string]float64 `json:"materials"`
	Total      map[string]float64            `json:"total"`
	Percent    map[string]float64            `json:"percent_contribution"`
	GrandTotal float64                       `json:"grand_total"`
}

func renderBaselineJSON(r *Renderer, runID string, t *baseline.Table) error {
	out := baselineOutput{
		RunID:      runID,
		Unit:       "kilotonnes",
		Materials:  make(map[string]map[string]float64),
		Total:      make(map[string]float64),
		Percent:    make(map[string]float64),
		GrandTotal: t.GrandTotal(),
	}
	for _, s := range t.Streams {
		out.Streams = append(out.Streams, s.Label())
		out.Total[s.Label()] = t.Total(s)
		out.Percent[s.Label()] = t.Percent(s)
	}
	for _, m := range baseline.Materials() {
		cells := make(map[string]float64, len(t.Streams))
		for _, s := range t.Streams {
			cells[s.Label()] = t.Cell(m, s)
		}
		out.Materials[m.Label()] = cells
	}

	enc := json.NewEncoder(r.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
