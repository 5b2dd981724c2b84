package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/massflow-labs/massflow/internal/wdf"
)

func init() {
	Register("duckdb", func() Source { return &DuckDBSource{} })
}

// DuckDBSource reads returns from a DuckDB database. Ingestion uses
// DuckDB's read_csv_auto, so the raw export never passes through Go.
type DuckDBSource struct {
	db *sql.DB
}

// Connect opens the DuckDB database. An empty path means in-memory.
func (s *DuckDBSource) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == ":memory:" {
		path = ""
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}
	s.db = db
	return nil
}

// Close closes the connection.
func (s *DuckDBSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadCSV replaces the returns table with the contents of a raw export.
func (s *DuckDBSource) LoadCSV(ctx context.Context, table, filePath string) error {
	if s.db == nil {
		return errNotConnected
	}
	if err := validIdent(table); err != nil {
		return err
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to resolve export path: %w", err)
	}

	query := fmt.Sprintf(
		`CREATE OR REPLACE TABLE %q AS SELECT * FROM read_csv_auto('%s', header=true)`,
		table, strings.ReplaceAll(absPath, "'", "''"),
	)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to load csv into duckdb: %w", err)
	}
	return nil
}

// Returns reads the returns table as a dataset.
func (s *DuckDBSource) Returns(ctx context.Context, table string) (*wdf.Dataset, error) {
	if s.db == nil {
		return nil, errNotConnected
	}
	if err := validIdent(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %q`, returnsColumns, table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query returns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanReturns(rows)
}

// Name identifies the adapter type.
func (s *DuckDBSource) Name() string { return "duckdb" }

var errNotConnected = fmt.Errorf("adapter not connected")

// validIdent rejects table names that cannot be safely interpolated.
func validIdent(name string) error {
	if name == "" {
		return fmt.Errorf("empty table name")
	}
	for _, r := range name {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return fmt.Errorf("invalid table name %q", name)
		}
	}
	return nil
}

var _ Source = (*DuckDBSource)(nil)
