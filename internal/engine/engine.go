// Package engine orchestrates the mass-flow pipeline: it loads the raw
// returns, runs the stream estimators in dependency order and assembles
// the baseline table, recording every run in the state store.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/massflow-labs/massflow/internal/adapter"
	"github.com/massflow-labs/massflow/internal/baseline"
	"github.com/massflow-labs/massflow/internal/dag"
	"github.com/massflow-labs/massflow/internal/rates"
	"github.com/massflow-labs/massflow/internal/state"
	"github.com/massflow-labs/massflow/internal/wdf"
)

// DefaultExcludedPeriod is dropped from every dataset: the first quarter
// of the 2014/15 export window has incomplete returns.
const DefaultExcludedPeriod = "Jan 14 - Mar 14"

// Config holds engine configuration.
type Config struct {
	// RawPath is the raw CSV export, used when no database source is
	// configured.
	RawPath string
	// Source selects a database source for the returns instead of the
	// CSV export. An empty Type means read RawPath directly.
	Source adapter.Config
	// StatePath is the run-history SQLite database.
	StatePath string
	// Environment tags runs in the state store.
	Environment string
	// ExcludePeriods drops quarters from the dataset. Nil means the
	// default exclusion; an explicit empty slice keeps everything.
	ExcludePeriods []string
	// Rates overrides the effective rates table (defaults otherwise).
	Rates *rates.Table
	// ExportDir, when set, receives per-stage CSV exports after a
	// successful run.
	ExportDir string
	// Logger is optional; nil discards.
	Logger *slog.Logger
}

// Engine runs the pipeline.
type Engine struct {
	logger *slog.Logger
	store  state.Store
	rates  *rates.Table
	cfg    Config
	graph  *dag.Graph
	stages map[string]stageFunc

	mu      sync.Mutex
	results map[string]*baseline.StreamTable
	table   *baseline.Table
}

// New creates an engine, opening and migrating the state store.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if cfg.Environment == "" {
		cfg.Environment = "dev"
	}
	if cfg.ExcludePeriods == nil {
		cfg.ExcludePeriods = []string{DefaultExcludedPeriod}
	}

	rt := cfg.Rates
	if rt == nil {
		rt = rates.Default()
	}
	if err := rt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rates: %w", err)
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state store: %w", err)
	}

	e := &Engine{
		logger:  logger,
		store:   store,
		rates:   rt,
		cfg:     cfg,
		results: make(map[string]*baseline.StreamTable),
	}
	if err := e.buildGraph(); err != nil {
		_ = store.Close()
		return nil, err
	}

	logger.Debug("engine initialized", "environment", cfg.Environment, "stages", e.graph.Len())
	return e, nil
}

// Close releases the state store.
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Store exposes the state store for run-history commands.
func (e *Engine) Store() state.Store {
	return e.store
}

// Rates returns the effective rates table.
func (e *Engine) Rates() *rates.Table {
	return e.rates
}

// Graph returns the stage dependency graph.
func (e *Engine) Graph() *dag.Graph {
	return e.graph
}

// StreamTable returns a stream's per-authority estimates from the last
// run.
func (e *Engine) StreamTable(name string) (*baseline.StreamTable, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.results[name]
	return st, ok
}

// Baseline returns the assembled table from the last run.
func (e *Engine) Baseline() *baseline.Table {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table
}

// LoadDataset reads the raw returns from the configured source and
// applies the period exclusions.
func (e *Engine) LoadDataset(ctx context.Context) (*wdf.Dataset, error) {
	ds, err := e.readSource(ctx)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("dataset loaded", "records", ds.Len(), "authorities", len(ds.Authorities()))
	return ds.ExcludePeriods(e.cfg.ExcludePeriods...), nil
}

func (e *Engine) readSource(ctx context.Context) (*wdf.Dataset, error) {
	if e.cfg.Source.Type == "" {
		if e.cfg.RawPath == "" {
			return nil, fmt.Errorf("no raw export configured")
		}
		return wdf.ReadCSV(e.cfg.RawPath)
	}

	src, err := adapter.New(e.cfg.Source)
	if err != nil {
		return nil, err
	}
	if err := src.Connect(ctx, e.cfg.Source); err != nil {
		return nil, fmt.Errorf("failed to connect to %s source: %w", e.cfg.Source.Type, err)
	}
	defer func() { _ = src.Close() }()

	return src.Returns(ctx, e.cfg.Source.ReturnsTable())
}

// Ingest loads the raw CSV export into the configured database source.
func (e *Engine) Ingest(ctx context.Context) error {
	if e.cfg.Source.Type == "" {
		return fmt.Errorf("no database source configured; ingest needs a duckdb or postgres target")
	}
	if e.cfg.RawPath == "" {
		return fmt.Errorf("no raw export configured")
	}

	src, err := adapter.New(e.cfg.Source)
	if err != nil {
		return err
	}
	if err := src.Connect(ctx, e.cfg.Source); err != nil {
		return fmt.Errorf("failed to connect to %s source: %w", e.cfg.Source.Type, err)
	}
	defer func() { _ = src.Close() }()

	table := e.cfg.Source.ReturnsTable()
	e.logger.Info("ingesting raw export", "path", e.cfg.RawPath, "target", src.Name(), "table", table)
	return src.LoadCSV(ctx, table, e.cfg.RawPath)
}
