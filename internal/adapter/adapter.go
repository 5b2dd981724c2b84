// Package adapter provides database sources for the raw WasteDataFlow
// returns. The pipeline can read the CSV export directly, but projects
// that keep the returns in DuckDB or a Postgres warehouse go through an
// adapter instead.
package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/massflow-labs/massflow/internal/wdf"
)

// Config holds the connection settings for a returns database.
type Config struct {
	// Type selects the adapter ("duckdb" or "postgres").
	Type string

	// Path is the database file for file-based adapters. ":memory:" is
	// accepted by DuckDB.
	Path string

	// Network settings for server-based adapters.
	Host     string
	Port     int
	Database string
	Username string
	Password string

	// Table is the returns table name. Defaults to "raw_returns".
	Table string
}

// DefaultReturnsTable is the table raw exports are ingested into.
const DefaultReturnsTable = "raw_returns"

// ReturnsTable returns the configured table name, defaulted.
func (c Config) ReturnsTable() string {
	if c.Table == "" {
		return DefaultReturnsTable
	}
	return c.Table
}

// Source is a database holding raw WasteDataFlow returns.
type Source interface {
	// Connect establishes the connection.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the connection.
	Close() error

	// LoadCSV ingests a raw CSV export into the returns table,
	// replacing any previous contents.
	LoadCSV(ctx context.Context, table, filePath string) error

	// Returns reads the returns table back as a dataset.
	Returns(ctx context.Context, table string) (*wdf.Dataset, error)

	// Name identifies the adapter type.
	Name() string
}

// Factory creates an unconnected adapter.
type Factory func() Source

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes an adapter type available to New. Called from adapter
// init functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Registered returns the sorted registered adapter type names.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates an unconnected adapter for the configured type.
func New(cfg Config) (Source, error) {
	registryMu.RLock()
	factory, ok := registry[cfg.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown adapter type %q (registered: %v)", cfg.Type, Registered())
	}
	return factory(), nil
}

// returnsColumns is the column order scanReturns expects.
const returnsColumns = `"Authority", "Period", "QuestionNumber", "QuText", "RowText", "ColText", "MaterialGroup", "Data"`

// scanReturns reads returns rows into a dataset. Data is nullable; NULL
// means the authority did not report the cell.
func scanReturns(rows *sql.Rows) (*wdf.Dataset, error) {
	var records []wdf.Record
	for rows.Next() {
		var rec wdf.Record
		var quText, materialGroup sql.NullString
		var data sql.NullFloat64
		if err := rows.Scan(&rec.Authority, &rec.Period, &rec.QuestionNumber,
			&quText, &rec.RowText, &rec.ColText, &materialGroup, &data); err != nil {
			return nil, fmt.Errorf("failed to scan return row: %w", err)
		}
		rec.QuText = quText.String
		rec.MaterialGroup = materialGroup.String
		if data.Valid {
			rec.Data = data.Float64
			rec.Present = true
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating return rows: %w", err)
	}
	return wdf.NewDataset(records), nil
}
