package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a store. A nil logger discards.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens the SQLite database at path. Use ":memory:" for an
// in-memory store.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping state database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("state store opened", "path", path)
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// --- Run operations ---

// CreateRun records the start of a pipeline run.
func (s *SQLiteStore) CreateRun(environment string) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	run := &Run{
		ID:          uuid.New().String(),
		Environment: environment,
		Status:      RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, environment, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Environment, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run finished with the given status.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, errMsg string) error {
	if s.db == nil {
		return errNotOpened
	}

	var errVal any
	if errMsg != "" {
		errVal = errMsg
	}
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		status, time.Now().UTC(), errVal, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	run := &Run{}
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := s.db.QueryRow(
		`SELECT id, environment, status, started_at, completed_at, error FROM runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.Environment, &run.Status, &run.StartedAt, &completedAt, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, environment, status, started_at, completed_at, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var completedAt sql.NullTime
		var errMsg sql.NullString
		if err := rows.Scan(&run.ID, &run.Environment, &run.Status, &run.StartedAt, &completedAt, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		if errMsg.Valid {
			run.Error = errMsg.String
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// LatestRunID returns the ID of the most recent completed run.
func (s *SQLiteStore) LatestRunID() (string, error) {
	if s.db == nil {
		return "", errNotOpened
	}

	var id string
	err := s.db.QueryRow(
		`SELECT id FROM runs WHERE status = ? ORDER BY started_at DESC LIMIT 1`,
		RunStatusCompleted,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no completed runs")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest run: %w", err)
	}
	return id, nil
}

// --- Stage run operations ---

// RecordStageRun inserts a stage run and fills in its ID.
func (s *SQLiteStore) RecordStageRun(sr *StageRun) error {
	if s.db == nil {
		return errNotOpened
	}
	if sr.Status == "" {
		sr.Status = StageRunStatusPending
	}

	res, err := s.db.Exec(
		`INSERT INTO stage_runs (run_id, stage, status, rows, error, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sr.RunID, sr.Stage, sr.Status, sr.Rows, sr.Error, sr.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to record stage run: %w", err)
	}
	sr.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get stage run id: %w", err)
	}
	return nil
}

// UpdateStageRun updates a stage run's outcome.
func (s *SQLiteStore) UpdateStageRun(id int64, status StageRunStatus, rows int64, errMsg string, durationMS int64) error {
	if s.db == nil {
		return errNotOpened
	}

	res, err := s.db.Exec(
		`UPDATE stage_runs SET status = ?, rows = ?, error = ?, duration_ms = ? WHERE id = ?`,
		status, rows, errMsg, durationMS, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update stage run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("stage run not found: %d", id)
	}
	return nil
}

// GetStageRuns returns a run's stage records ordered by insertion.
func (s *SQLiteStore) GetStageRuns(runID string) ([]*StageRun, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, stage, status, rows, error, duration_ms
		 FROM stage_runs WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*StageRun
	for rows.Next() {
		sr := &StageRun{}
		if err := rows.Scan(&sr.ID, &sr.RunID, &sr.Stage, &sr.Status, &sr.Rows, &sr.Error, &sr.DurationMS); err != nil {
			return nil, fmt.Errorf("failed to scan stage run: %w", err)
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stage runs: %w", err)
	}
	return out, nil
}

// --- Baseline snapshots ---

// SaveBaseline stores the assembled table cells for a run.
func (s *SQLiteStore) SaveBaseline(runID string, cells []BaselineCell) error {
	if s.db == nil {
		return errNotOpened
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(
		`INSERT INTO baseline_cells (run_id, material, stream, kilotonnes) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range cells {
		if _, err := stmt.Exec(runID, c.Material, c.Stream, c.Kilotonnes); err != nil {
			return fmt.Errorf("failed to insert baseline cell: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit baseline: %w", err)
	}

	s.logger.Debug("baseline snapshot saved", "run_id", runID, "cells", len(cells))
	return nil
}

// GetBaseline returns a run's baseline snapshot.
func (s *SQLiteStore) GetBaseline(runID string) ([]BaselineCell, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.Query(
		`SELECT run_id, material, stream, kilotonnes FROM baseline_cells WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query baseline: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cells []BaselineCell
	for rows.Next() {
		var c BaselineCell
		if err := rows.Scan(&c.RunID, &c.Material, &c.Stream, &c.Kilotonnes); err != nil {
			return nil, fmt.Errorf("failed to scan baseline cell: %w", err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating baseline cells: %w", err)
	}
	return cells, nil
}

var errNotOpened = errors.New("state database not opened")

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
