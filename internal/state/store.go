// Package state persists pipeline run history and baseline snapshots in
// SQLite. Schema changes go through embedded goose migrations.
package state

import "time"

// RunStatus is the lifecycle status of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one execution of the pipeline.
type Run struct {
	ID          string
	Environment string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// StageRunStatus is the lifecycle status of a single stage within a run.
type StageRunStatus string

const (
	StageRunStatusPending StageRunStatus = "pending"
	StageRunStatusRunning StageRunStatus = "running"
	StageRunStatusSuccess StageRunStatus = "success"
	StageRunStatusFailed  StageRunStatus = "failed"
	StageRunStatusSkipped StageRunStatus = "skipped"
)

// StageRun records one stage execution.
type StageRun struct {
	ID         int64
	RunID      string
	Stage      string
	Status     StageRunStatus
	Rows       int64 // authority rows produced
	Error      string
	DurationMS int64
}

// BaselineCell is one cell of an assembled baseline table snapshot.
type BaselineCell struct {
	RunID      string
	Material   string
	Stream     string
	Kilotonnes float64
}

// Store is the persistence interface for run history.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateRun(environment string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)
	LatestRunID() (string, error)

	RecordStageRun(sr *StageRun) error
	UpdateStageRun(id int64, status StageRunStatus, rows int64, errMsg string, durationMS int64) error
	GetStageRuns(runID string) ([]*StageRun, error)

	SaveBaseline(runID string, cells []BaselineCell) error
	GetBaseline(runID string) ([]BaselineCell, error)
}
