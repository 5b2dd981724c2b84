package engine

// run.go - run orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/massflow-labs/massflow/internal/baseline"
	"github.com/massflow-labs/massflow/internal/state"
	"github.com/massflow-labs/massflow/internal/wdf"
)

// Run executes the full pipeline: load the dataset, run every stage in
// dependency order (stages within a level run concurrently), snapshot
// the baseline and record the run. The returned run reflects the final
// recorded state even on failure.
func (e *Engine) Run(ctx context.Context) (*state.Run, error) {
	e.logger.Info("starting run", "environment", e.cfg.Environment)

	ds, err := e.LoadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	run, err := e.store.CreateRun(e.cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	e.logger.Debug("created run", "run_id", run.ID)

	order, err := e.graph.Order()
	if err != nil {
		_ = e.store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		return e.reloadRun(run), err
	}

	// Record every stage as pending up front, so a run's record is
	// complete even when it aborts early.
	stageRuns := make(map[string]*state.StageRun, len(order))
	for _, name := range order {
		sr := &state.StageRun{RunID: run.ID, Stage: name, Status: state.StageRunStatusPending}
		if err := e.store.RecordStageRun(sr); err != nil {
			_ = e.store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
			return e.reloadRun(run), fmt.Errorf("failed to record stage %s: %w", name, err)
		}
		stageRuns[name] = sr
	}

	levels, err := e.graph.Levels()
	if err != nil {
		_ = e.store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		return e.reloadRun(run), err
	}

	runErr := e.executeLevels(ctx, ds, levels, stageRuns)

	if runErr != nil {
		e.logger.Info("run failed", "run_id", run.ID, "error", runErr.Error())
		_ = e.store.CompleteRun(run.ID, state.RunStatusFailed, runErr.Error())
		return e.reloadRun(run), runErr
	}

	if err := e.snapshotBaseline(run.ID); err != nil {
		e.logger.Info("run failed", "run_id", run.ID, "error", err.Error())
		_ = e.store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		return e.reloadRun(run), err
	}

	if e.cfg.ExportDir != "" {
		if err := e.Export(e.cfg.ExportDir); err != nil {
			_ = e.store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
			return e.reloadRun(run), err
		}
	}

	e.logger.Info("run completed", "run_id", run.ID)
	_ = e.store.CompleteRun(run.ID, state.RunStatusCompleted, "")
	return e.reloadRun(run), nil
}

// executeLevels runs each level's stages concurrently. On failure the
// remaining stages are recorded skipped.
func (e *Engine) executeLevels(ctx context.Context, ds *wdf.Dataset, levels [][]string, stageRuns map[string]*state.StageRun) error {
	var failed []string
	var errs []error

	for _, level := range levels {
		if len(failed) > 0 {
			// A previous level failed: everything left is skipped.
			for _, name := range level {
				sr := stageRuns[name]
				_ = e.store.UpdateStageRun(sr.ID, state.StageRunStatusSkipped, 0,
					fmt.Sprintf("skipped: upstream stage %s failed", failed[0]), 0)
			}
			continue
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, name := range level {
			sr := stageRuns[name]
			fn := e.stages[name]
			g.Go(func() error {
				_ = e.store.UpdateStageRun(sr.ID, state.StageRunStatusRunning, 0, "", 0)

				start := time.Now()
				rows, err := fn(gctx, ds)
				durationMS := time.Since(start).Milliseconds()

				if err != nil {
					e.logger.Debug("stage failed", "stage", sr.Stage, "error", err)
					_ = e.store.UpdateStageRun(sr.ID, state.StageRunStatusFailed, 0, err.Error(), durationMS)
					e.mu.Lock()
					failed = append(failed, sr.Stage)
					errs = append(errs, fmt.Errorf("stage %s: %w", sr.Stage, err))
					e.mu.Unlock()
					return err
				}

				e.logger.Debug("stage completed", "stage", sr.Stage, "rows", rows, "duration_ms", durationMS)
				_ = e.store.UpdateStageRun(sr.ID, state.StageRunStatusSuccess, rows, "", durationMS)
				return nil
			})
		}
		// A failed level does not abort the loop: the remaining levels
		// still get their skipped records.
		_ = g.Wait()
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// snapshotBaseline persists the assembled table's cells for the run.
func (e *Engine) snapshotBaseline(runID string) error {
	table := e.Baseline()
	if table == nil {
		return fmt.Errorf("baseline not assembled")
	}

	var cells []state.BaselineCell
	for _, m := range baseline.Materials() {
		for _, s := range table.Streams {
			cells = append(cells, state.BaselineCell{
				Material:   m.Label(),
				Stream:     s.Label(),
				Kilotonnes: table.Cell(m, s),
			})
		}
	}
	return e.store.SaveBaseline(runID, cells)
}

// reloadRun fetches the run's final recorded state, falling back to the
// in-memory value.
func (e *Engine) reloadRun(run *state.Run) *state.Run {
	if fresh, err := e.store.GetRun(run.ID); err == nil {
		return fresh
	}
	return run
}
