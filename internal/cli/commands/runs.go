package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/massflow-labs/massflow/internal/state"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show run history",
		Long: `List recorded runs, or show the stage detail of one run.

Use "latest" as the run id to show the most recent run.`,
		Example: `  # Recent runs
  massflow runs

  # Stage detail for the most recent run
  massflow runs latest

  # A specific run
  massflow runs 2f1c9a6e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listRuns(cmd, opts)
			}
			return showRun(cmd, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to list")

	return cmd
}

func openStore(cmdCtx *CommandContext) (state.Store, func(), error) {
	store := state.NewSQLiteStore(cmdCtx.Logger)
	if err := store.Open(cmdCtx.Cfg.StatePath); err != nil {
		return nil, nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to migrate state store: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

func listRuns(cmd *cobra.Command, opts *RunsOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	store, cleanup, err := openStore(cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmdCtx.Renderer.Println("No runs recorded")
		return nil
	}

	header := []string{"Run", "Environment", "Status", "Started", "Duration", "Error"}
	var rows [][]string
	for _, run := range runs {
		duration := ""
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			run.ID,
			run.Environment,
			string(run.Status),
			run.StartedAt.Format(time.RFC3339),
			duration,
			run.Error,
		})
	}
	return cmdCtx.Renderer.Grid(header, rows)
}

func showRun(cmd *cobra.Command, runID string) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	store, cleanup, err := openStore(cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	if runID == "latest" {
		latest, err := store.LatestRunID()
		if err != nil {
			return err
		}
		runID = latest
	}

	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	r.Printf("Run %s (%s): %s\n", run.ID, run.Environment, run.Status)
	if run.Error != "" {
		r.Printf("Error: %s\n", run.Error)
	}
	r.Println()

	stages, err := store.GetStageRuns(run.ID)
	if err != nil {
		return err
	}

	header := []string{"Stage", "Status", "Rows", "Duration", "Error"}
	var rows [][]string
	for _, sr := range stages {
		rows = append(rows, []string{
			sr.Stage,
			string(sr.Status),
			strconv.FormatInt(sr.Rows, 10),
			fmt.Sprintf("%dms", sr.DurationMS),
			sr.Error,
		})
	}
	return r.Grid(header, rows)
}
