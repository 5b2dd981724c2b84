package state

import (
	"path/filepath"
	"testing"

	"github.com/massflow-labs/massflow/internal/testutil"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	if err := store.Open(filepath.Join(t.TempDir(), "state.db")); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)
	if err := store.Open(filepath.Join(t.TempDir(), "state.db")); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	for _, table := range []string{"runs", "stage_runs", "baseline_cells"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if err != nil {
			t.Errorf("table %s does not exist: %v", table, err)
			continue
		}
		rows.Close()
	}

	v, err := store.MigrationVersion()
	if err != nil {
		t.Fatalf("failed to get migration version: %v", err)
	}
	if v < 1 {
		t.Errorf("expected migration version >= 1, got %d", v)
	}
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("test")
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected a run ID")
	}
	if run.Status != RunStatusRunning {
		t.Errorf("expected running status, got %s", run.Status)
	}

	if err := store.CompleteRun(run.ID, RunStatusCompleted, ""); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Status != RunStatusCompleted {
		t.Errorf("expected completed status, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("expected a completion timestamp")
	}
	if got.Error != "" {
		t.Errorf("expected no error, got %q", got.Error)
	}
}

func TestSQLiteStore_CompleteRun_Failed(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("test")
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if err := store.CompleteRun(run.ID, RunStatusFailed, "stage blew up"); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Status != RunStatusFailed {
		t.Errorf("expected failed status, got %s", got.Status)
	}
	if got.Error != "stage blew up" {
		t.Errorf("expected error message, got %q", got.Error)
	}
}

func TestSQLiteStore_CompleteRun_NotFound(t *testing.T) {
	store := setupTestStore(t)
	if err := store.CompleteRun("no-such-run", RunStatusCompleted, ""); err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestSQLiteStore_ListRunsAndLatest(t *testing.T) {
	store := setupTestStore(t)

	first, _ := store.CreateRun("test")
	second, _ := store.CreateRun("test")
	if err := store.CompleteRun(first.ID, RunStatusCompleted, ""); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}
	if err := store.CompleteRun(second.ID, RunStatusFailed, "boom"); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	// LatestRunID only considers completed runs.
	latest, err := store.LatestRunID()
	if err != nil {
		t.Fatalf("failed to get latest run: %v", err)
	}
	if latest != first.ID {
		t.Errorf("expected latest completed run %s, got %s", first.ID, latest)
	}
}

func TestSQLiteStore_LatestRunID_NoRuns(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.LatestRunID(); err == nil {
		t.Error("expected error with no completed runs")
	}
}

func TestSQLiteStore_StageRuns(t *testing.T) {
	store := setupTestStore(t)
	run, _ := store.CreateRun("test")

	sr := &StageRun{RunID: run.ID, Stage: "litter", Status: StageRunStatusPending}
	if err := store.RecordStageRun(sr); err != nil {
		t.Fatalf("failed to record stage run: %v", err)
	}
	if sr.ID == 0 {
		t.Fatal("expected stage run ID to be filled in")
	}

	if err := store.UpdateStageRun(sr.ID, StageRunStatusSuccess, 22, "", 37); err != nil {
		t.Fatalf("failed to update stage run: %v", err)
	}

	stages, err := store.GetStageRuns(run.ID)
	if err != nil {
		t.Fatalf("failed to get stage runs: %v", err)
	}
	if len(stages) != 1 {
		t.Fatalf("expected 1 stage run, got %d", len(stages))
	}
	got := stages[0]
	if got.Status != StageRunStatusSuccess || got.Rows != 22 || got.DurationMS != 37 {
		t.Errorf("unexpected stage run: %+v", got)
	}
}

func TestSQLiteStore_UpdateStageRun_NotFound(t *testing.T) {
	store := setupTestStore(t)
	if err := store.UpdateStageRun(12345, StageRunStatusSuccess, 0, "", 0); err == nil {
		t.Error("expected error for unknown stage run")
	}
}

func TestSQLiteStore_Baseline(t *testing.T) {
	store := setupTestStore(t)
	run, _ := store.CreateRun("test")

	cells := []BaselineCell{
		{Material: "DRS Glass Bottles", Stream: "Household Kerbside Recycling", Kilotonnes: 12.5},
		{Material: "DRS Glass Bottles", Stream: "Litter", Kilotonnes: 0.3},
	}
	if err := store.SaveBaseline(run.ID, cells); err != nil {
		t.Fatalf("failed to save baseline: %v", err)
	}

	got, err := store.GetBaseline(run.ID)
	if err != nil {
		t.Fatalf("failed to get baseline: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(got))
	}
	if got[0].RunID != run.ID || got[0].Kilotonnes != 12.5 {
		t.Errorf("unexpected cell: %+v", got[0])
	}
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	if _, err := store.CreateRun("test"); err == nil {
		t.Error("expected error before Open")
	}
	if err := store.RecordStageRun(&StageRun{}); err == nil {
		t.Error("expected error before Open")
	}
}
