package adapter

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/massflow-labs/massflow/internal/wdf"
)

func init() {
	Register("postgres", func() Source { return &PostgresSource{} })
}

// PostgresSource reads returns from a Postgres warehouse table.
// Ingestion decodes the export in Go and inserts it in one transaction,
// since Postgres has no server-side access to the local file.
type PostgresSource struct {
	db *sql.DB
}

// Connect opens the Postgres connection.
func (s *PostgresSource) Connect(ctx context.Context, cfg Config) error {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s", host, port, cfg.Database)
	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}
	s.db = db
	return nil
}

// Close closes the connection.
func (s *PostgresSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadCSV replaces the returns table with the contents of a raw export.
func (s *PostgresSource) LoadCSV(ctx context.Context, table, filePath string) error {
	if s.db == nil {
		return errNotConnected
	}
	if err := validIdent(table); err != nil {
		return err
	}

	ds, err := wdf.ReadCSV(filePath)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ddl := fmt.Sprintf(`
		DROP TABLE IF EXISTS %q;
		CREATE TABLE %q (
			"Authority"      TEXT NOT NULL,
			"Period"         TEXT NOT NULL,
			"QuestionNumber" TEXT NOT NULL,
			"QuText"         TEXT,
			"RowText"        TEXT NOT NULL,
			"ColText"        TEXT NOT NULL,
			"MaterialGroup"  TEXT,
			"Data"           DOUBLE PRECISION
		)`, table, table)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create returns table: %w", err)
	}

	insert := fmt.Sprintf(
		`INSERT INTO %q (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		table, returnsColumns,
	)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range ds.Records() {
		var data any
		if rec.Present {
			data = rec.Data
		}
		if _, err := stmt.ExecContext(ctx, rec.Authority, rec.Period, rec.QuestionNumber,
			rec.QuText, rec.RowText, rec.ColText, rec.MaterialGroup, data); err != nil {
			return fmt.Errorf("failed to insert return row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ingest: %w", err)
	}
	return nil
}

// Returns reads the returns table as a dataset.
func (s *PostgresSource) Returns(ctx context.Context, table string) (*wdf.Dataset, error) {
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
func (s *PostgresSource) Name() string { return "postgres" }

// setDB injects a connection for tests.
func (s *PostgresSource) setDB(db *sql.DB) { s.db = db }

var _ Source = (*PostgresSource)(nil)
