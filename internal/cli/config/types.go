// Package config provides configuration management for the massflow CLI.
//
// Configuration is layered: defaults, then a massflow.yaml file, then
// MASSFLOW_ environment variables, then CLI flags.
package config

// SourceConfig selects where the raw returns live. An empty Type means
// the raw CSV export is read directly.
type SourceConfig struct {
	Type     string `koanf:"type"`
	Path     string `koanf:"path"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Table    string `koanf:"table"`
}

// Config holds all CLI configuration options.
type Config struct {
	// RawFile is the WasteDataFlow CSV export.
	RawFile string `koanf:"raw_file"`
	// RatesFile optionally overrides the built-in composition rates.
	RatesFile string `koanf:"rates_file"`
	// StatePath is the run-history database.
	StatePath string `koanf:"state_path"`
	// Environment tags runs in the state store.
	Environment string `koanf:"environment"`
	// ExcludePeriods drops quarters from the dataset. Nil means the
	// engine default; an explicit empty list keeps everything.
	ExcludePeriods []string `koanf:"exclude_periods"`
	// ExportDir, when set, receives CSV exports after a run.
	ExportDir string `koanf:"export_dir"`
	// Source selects a database source instead of the raw CSV.
	Source *SourceConfig `koanf:"source"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	// ProjectRoot is where massflow.yaml was found (or the CWD).
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultRawFile   = "data/wdf_returns.csv"
	DefaultStateFile = ".massflow/state.db"
	DefaultEnv       = "dev"
	DefaultOutput    = "auto" // TTY gets a table, pipes get markdown
)
