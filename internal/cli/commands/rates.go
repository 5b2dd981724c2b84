package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/massflow-labs/massflow/internal/baseline"
	"github.com/massflow-labs/massflow/internal/rates"
)

// NewRatesCommand creates the rates command.
func NewRatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Show the effective composition rates",
		Long: `Show the composition rates the estimators will use, after any
overrides from the configured rates file.`,
		Example: `  massflow rates
  massflow rates -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRates(cmd)
		},
	}
}

func runRates(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rt := cmdCtx.Engine.Rates()
	r := cmdCtx.Renderer

	if r.EffectiveMode() == ModeJSON {
		enc := json.NewEncoder(r.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(rt)
	}

	header := []string{"Material", "Residual", "HWRC", "Commercial", "Litter", "Environment escape"}
	var rows [][]string
	for _, m := range baseline.Materials() {
		rows = append(rows, []string{
			m.Label(),
			formatCell(perMaterial(rt.Residual, m)),
			formatCell(perMaterial(rt.HWRC, m)),
			formatCell(perMaterial(rt.Commercial, m)),
			formatCell(perMaterial(rt.Litter, m)),
			formatCell(perMaterial(rt.EnvironmentEscape, m)),
		})
	}
	if err := r.Grid(header, rows); err != nil {
		return err
	}

	r.Printf("\nKerbside recycling fallbacks: dry glass %s, dry plastic %s, dry ferrous %s, dry aluminium %s, cartons %s\n",
		formatCell(rt.Kerbside.ComingledGlass),
		formatCell(rt.Kerbside.ComingledPlastics),
		formatCell(rt.Kerbside.ComingledFerrous),
		formatCell(rt.Kerbside.ComingledAluminium),
		formatCell(rt.Kerbside.ComingledCartons))
	return nil
}

func perMaterial(pm rates.PerMaterial, m baseline.Material) float64 {
	switch m {
	case baseline.GlassBottles:
		return pm.GlassBottles
	case baseline.PlasticBottles:
		return pm.PlasticBottles
	case baseline.FerrousCans:
		return pm.FerrousCans
	case baseline.AluminiumCans:
		return pm.AluminiumCans
	case baseline.BeverageCartons:
		return pm.BeverageCartons
	}
	return 0
}
