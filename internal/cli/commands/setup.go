// Package commands implements the massflow CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/massflow-labs/massflow/internal/adapter"
	"github.com/massflow-labs/massflow/internal/cli/config"
	"github.com/massflow-labs/massflow/internal/engine"
	"github.com/massflow-labs/massflow/internal/rates"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *Renderer
}

// NewCommandContext creates a CommandContext with an engine. The
// returned cleanup function must be called, typically via defer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: NewRenderer(cmd.OutOrStdout(), Mode(cfg.OutputFormat)),
	}, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an
// engine, for commands that only read the state database or config.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: NewRenderer(cmd.OutOrStdout(), Mode(cfg.OutputFormat)),
	}
}

// getConfig returns the loaded configuration, falling back to defaults
// when the root command's PersistentPreRunE has not run (tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		RawFile:     config.DefaultRawFile,
		StatePath:   config.DefaultStateFile,
		Environment: config.DefaultEnv,
	}
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	var rt *rates.Table
	if cfg.RatesFile != "" {
		loaded, err := rates.Load(cfg.RatesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load rates: %w", err)
		}
		rt = loaded
	}

	var src adapter.Config
	if cfg.Source != nil {
		src = adapter.Config{
			Type:     cfg.Source.Type,
			Path:     cfg.Source.Path,
			Host:     cfg.Source.Host,
			Port:     cfg.Source.Port,
			Database: cfg.Source.Database,
			Username: cfg.Source.Username,
			Password: cfg.Source.Password,
			Table:    cfg.Source.Table,
		}
	}

	return engine.New(engine.Config{
		RawPath:        cfg.RawFile,
		Source:         src,
		StatePath:      cfg.StatePath,
		Environment:    cfg.Environment,
		ExcludePeriods: cfg.ExcludePeriods,
		Rates:          rt,
		ExportDir:      cfg.ExportDir,
		Logger:         logger,
	})
}
