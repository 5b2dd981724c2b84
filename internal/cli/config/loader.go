package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search
// for a config file.
const maxUpwardSearchLevels = 10

var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// configExistsIn checks if a massflow config file exists in the directory.
func configExistsIn(dir string) bool {
	for _, name := range []string{"massflow.yaml", "massflow.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// findProjectRootUpward searches upward from startDir for a massflow
// config file. Returns empty string if none found.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves path against baseDir unless it is
// empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and
// flags. Precedence (highest to lowest): flags > env vars > config
// file > defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	// Pin down the project root first: explicit config file wins,
	// otherwise search upward from the CWD.
	projectRoot := ""
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}
	if projectRoot == "" {
		if cwd, err := os.Getwd(); err == nil {
			projectRoot = findProjectRootUpward(cwd)
		}
	}
	if projectRoot == "" {
		cwd, _ := os.Getwd()
		if cwd == "" {
			cwd = "."
		}
		projectRoot = cwd
	}

	// Paths given as flags are relative to the CWD, not the project
	// root; make them absolute before the resolution step.
	var flagRawFile, flagRatesFile, flagStatePath, flagExportDir string
	if flags != nil {
		flagRawFile = absFlagPath(flags, "raw")
		flagRatesFile = absFlagPath(flags, "rates")
		flagStatePath = absFlagPath(flags, "state")
		flagExportDir = absFlagPath(flags, "export-dir")
	}

	// 1. Defaults.
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"raw_file":    DefaultRawFile,
		"state_path":  DefaultStateFile,
		"environment": DefaultEnv,
		"verbose":     false,
		"output":      DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file.
	if cfgFile == "" {
		for _, name := range []string{"massflow.yaml", "massflow.yml"} {
			candidate := filepath.Join(projectRoot, name)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
				break
			}
		}
	}
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables: MASSFLOW_STATE_PATH -> state_path,
	// MASSFLOW_SOURCE__TYPE -> source.type.
	if err := k.Load(env.Provider("MASSFLOW_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "MASSFLOW_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority).
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			// Short flag names map onto longer config keys.
			switch key {
			case "raw":
				key = "raw_file"
			case "rates":
				key = "rates_file"
			case "state":
				key = "state_path"
			case "env":
				key = "environment"
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectRoot = projectRoot

	if flagRawFile != "" {
		cfg.RawFile = flagRawFile
	} else {
		cfg.RawFile = resolvePathRelativeTo(cfg.RawFile, projectRoot)
	}
	if flagRatesFile != "" {
		cfg.RatesFile = flagRatesFile
	} else {
		cfg.RatesFile = resolvePathRelativeTo(cfg.RatesFile, projectRoot)
	}
	if flagStatePath != "" {
		cfg.StatePath = flagStatePath
	} else {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, projectRoot)
	}
	if flagExportDir != "" {
		cfg.ExportDir = flagExportDir
	} else {
		cfg.ExportDir = resolvePathRelativeTo(cfg.ExportDir, projectRoot)
	}

	if cfg.Source != nil {
		expandSourceEnvVars(cfg.Source)
		if cfg.Source.Type == "duckdb" {
			cfg.Source.Path = resolvePathRelativeTo(cfg.Source.Path, projectRoot)
		}
	}

	currentConfig = &cfg
	return &cfg, nil
}

func absFlagPath(flags *pflag.FlagSet, name string) string {
	if !flags.Changed(name) {
		return ""
	}
	v, _ := flags.GetString(name)
	if v == "" {
		return ""
	}
	abs, err := filepath.Abs(v)
	if err != nil {
		return filepath.Clean(v)
	}
	return abs
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger, so the
// commands package can retrieve it without importing the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// expandSourceEnvVars expands environment variables in sensitive source
// fields, so credentials can stay out of massflow.yaml.
func expandSourceEnvVars(s *SourceConfig) {
	s.Host = expandEnvVars(s.Host)
	s.Database = expandEnvVars(s.Database)
	s.Username = expandEnvVars(s.Username)
	s.Password = expandEnvVars(s.Password)
}
