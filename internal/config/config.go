// Package config provides configuration management for razd.
// It supports a YAML configuration file, environment variables, and sensible defaults.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/sync"
	"github.com/klauern/razd/internal/util"
)

// Config represents the complete razd configuration.
type Config struct {
	// Sync configures automatic manifest synchronization
	Sync SyncConfig `yaml:"sync" json:"sync"`

	// Tracking configures where sync state is stored
	Tracking TrackingConfig `yaml:"tracking" json:"tracking"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configures diagnostic output
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SyncConfig holds synchronization settings.
type SyncConfig struct {
	// Skip disables synchronization entirely
	Skip bool `yaml:"skip" json:"skip"`
	// AutoApprove answers every sync question with yes
	AutoApprove bool `yaml:"auto_approve" json:"auto_approve"`
	// AutoBackup backs a file up before sync overwrites it
	AutoBackup bool `yaml:"auto_backup" json:"auto_backup"`
}

// TrackingConfig holds tracking store settings.
type TrackingConfig struct {
	// DataDir is the directory holding tracking records. Empty uses the
	// platform data directory.
	DataDir string `yaml:"data_dir,omitempty" json:"data_dir,omitempty"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `yaml:"color" json:"color"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum level logged (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`
	// Format selects text or json log lines
	Format string `yaml:"format" json:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			Skip:        false,
			AutoApprove: false,
			AutoBackup:  true,
		},
		Output: OutputConfig{
			Color: "auto",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// FilePath returns the path to the config file.
func FilePath() string {
	return util.RazdConfigPath()
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	cfg, err := LoadFromPath(FilePath())
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.applyEnvironment()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return cfg, err
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, rerrors.Config("invalid config file "+path, err)
	}

	cfg.applyEnvironment()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return rerrors.Config("output.color must be auto, always or never, got "+c.Output.Color, nil)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return rerrors.Config("logging.format must be text or json, got "+c.Logging.Format, nil)
	}
	return nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(path, data, 0o600)
}

// Policy returns the sync policy described by the configuration.
func (c *Config) Policy() sync.Policy {
	return sync.Policy{
		SkipAll:     c.Sync.Skip,
		AutoApprove: c.Sync.AutoApprove,
		MakeBackups: c.Sync.AutoBackup,
	}
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern RAZD_<SECTION>_<KEY>, with
// RAZD_NO_SYNC and RAZD_AUTO_YES kept for compatibility.
func (c *Config) applyEnvironment() {
	// Sync settings
	if v := os.Getenv("RAZD_NO_SYNC"); v != "" {
		c.Sync.Skip = parseBool(v)
	}
	if v := os.Getenv("RAZD_AUTO_YES"); v != "" {
		c.Sync.AutoApprove = parseBool(v)
	}
	if v := os.Getenv("RAZD_SYNC_AUTO_BACKUP"); v != "" {
		c.Sync.AutoBackup = parseBool(v)
	}

	// Tracking settings
	if v := os.Getenv("RAZD_DATA_DIR"); v != "" {
		c.Tracking.DataDir = v
	}

	// Output settings
	if v := os.Getenv("RAZD_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}

	// Logging settings
	if v := os.Getenv("RAZD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// DataDir returns the tracking data directory with ~ expanded.
func (c *Config) DataDir() string {
	if c.Tracking.DataDir == "" {
		return util.DataDir()
	}
	return util.ExpandPath(c.Tracking.DataDir)
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
