package engine

// stages.go - stage definitions and the dependency graph

import (
	"context"
	"fmt"

	"github.com/massflow-labs/massflow/internal/baseline"
	"github.com/massflow-labs/massflow/internal/dag"
	"github.com/massflow-labs/massflow/internal/wdf"
)

// StageBaseline assembles the final table from all stream stages.
const StageBaseline = "baseline"

// stageFunc computes one stage. It returns the number of rows produced.
type stageFunc func(ctx context.Context, ds *wdf.Dataset) (int64, error)

// buildGraph registers the six stream stages and the baseline stage.
// Environment leftover derives from litter; baseline depends on every
// stream.
func (e *Engine) buildGraph() error {
	g := dag.New()
	e.stages = make(map[string]stageFunc)

	streamStage := func(s baseline.Stream, estimate func(*wdf.Dataset) *baseline.StreamTable) {
		name := s.Name()
		g.AddStage(name)
		e.stages[name] = func(_ context.Context, ds *wdf.Dataset) (int64, error) {
			st := estimate(ds)
			e.setResult(name, st)
			return int64(st.Len()), nil
		}
	}

	streamStage(baseline.KerbsideRecycling, func(ds *wdf.Dataset) *baseline.StreamTable {
		return baseline.EstimateKerbsideRecycling(ds, e.rates)
	})
	streamStage(baseline.KerbsideResidual, func(ds *wdf.Dataset) *baseline.StreamTable {
		return baseline.EstimateKerbsideResidual(ds, e.rates)
	})
	streamStage(baseline.HWRC, func(ds *wdf.Dataset) *baseline.StreamTable {
		return baseline.EstimateHWRC(ds, e.rates)
	})
	streamStage(baseline.Commercial, func(ds *wdf.Dataset) *baseline.StreamTable {
		return baseline.EstimateCommercial(ds, e.rates)
	})
	streamStage(baseline.Litter, func(ds *wdf.Dataset) *baseline.StreamTable {
		return baseline.EstimateLitter(ds, e.rates)
	})

	leftover := baseline.EnvironmentLeftover.Name()
	g.AddStage(leftover)
	e.stages[leftover] = func(_ context.Context, _ *wdf.Dataset) (int64, error) {
		litter, ok := e.result(baseline.Litter.Name())
		if !ok {
			return 0, fmt.Errorf("litter estimates not available")
		}
		st := baseline.EstimateEnvironmentLeftover(litter, e.rates)
		e.setResult(leftover, st)
		return int64(st.Len()), nil
	}
	if err := g.AddDep(leftover, baseline.Litter.Name()); err != nil {
		return err
	}

	g.AddStage(StageBaseline)
	e.stages[StageBaseline] = e.assembleStage
	for _, s := range baseline.Streams() {
		if err := g.AddDep(StageBaseline, s.Name()); err != nil {
			return err
		}
	}

	e.graph = g
	return nil
}

func (e *Engine) assembleStage(_ context.Context, _ *wdf.Dataset) (int64, error) {
	tables := make([]*baseline.StreamTable, 0, len(baseline.Streams()))
	for _, s := range baseline.Streams() {
		st, ok := e.result(s.Name())
		if !ok {
			return 0, fmt.Errorf("stream %s not computed", s.Name())
		}
		tables = append(tables, st)
	}

	table, err := baseline.Assemble(tables...)
	if err != nil {
		return 0, err
	}
	if err := table.Check(); err != nil {
		return 0, fmt.Errorf("baseline failed consistency check: %w", err)
	}

	e.mu.Lock()
	e.table = table
	e.mu.Unlock()

	// Material rows plus the two summary rows.
	return int64(len(baseline.Materials()) + 2), nil
}

func (e *Engine) setResult(name string, st *baseline.StreamTable) {
	e.mu.Lock()
	e.results[name] = st
	e.mu.Unlock()
}

func (e *Engine) result(name string) (*baseline.StreamTable, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.results[name]
	return st, ok
}
