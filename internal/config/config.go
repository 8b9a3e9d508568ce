// Package config provides configuration management for the journal
// application and the analysis engine thresholds.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"mindtrader/internal/analysis"
	apperrors "mindtrader/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Storage  StorageConfig   `mapstructure:"storage"`
	Logging  LoggingConfig   `mapstructure:"logging"`
	UI       UIConfig        `mapstructure:"ui"`
	Analysis analysis.Config `mapstructure:"analysis"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Console  bool   `mapstructure:"console"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/mindtrader"
	}
	return filepath.Join(home, ".config", "mindtrader")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, apperrors.Wrap(err, "loading config.toml")
		}
		// First run: write the commented template and continue on
		// defaults.
		if err := writeTemplate(configDir); err != nil {
			return nil, apperrors.Wrap(err, "writing config template")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.Wrap(err, "parsing config.toml")
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("storage.path", filepath.Join(configDir, "mindtrader.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "mindtrader.log"))
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")

	def := analysis.DefaultConfig()
	v.SetDefault("analysis.min_sample", def.MinSample)
	v.SetDefault("analysis.timing_min_sample", def.TimingMinSample)
	v.SetDefault("analysis.warn_win_rate", def.WarnWinRate)
	v.SetDefault("analysis.trend_delta", def.TrendDelta)
	v.SetDefault("analysis.implicit_linking", def.ImplicitLinking)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MINDTRADER_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("MINDTRADER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration. Invalid analysis thresholds are
// fatal here so the engine never sees them.
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return apperrors.NewConfigError("storage.path", c.Storage.Path, "must not be empty")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return apperrors.NewConfigError("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}
	return c.Analysis.Validate()
}
