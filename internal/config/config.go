// Package config loads ncfilter settings from a YAML file, NCFILTER_
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/robert-malhotra/go-ncfilter/internal/layout"
	"github.com/robert-malhotra/go-ncfilter/internal/logging"
	"github.com/robert-malhotra/go-ncfilter/internal/pluginpath"
)

// Config is the top-level configuration for ncfilter.
type Config struct {
	PluginPath []string       `yaml:"plugin_path" mapstructure:"plugin_path"`
	Chunking   ChunkingConfig `yaml:"chunking" mapstructure:"chunking"`
	Filters    FiltersConfig  `yaml:"filters" mapstructure:"filters"`
	Logging    LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// ChunkingConfig holds chunk resolution thresholds.
type ChunkingConfig struct {
	MinChunkBytes        int    `yaml:"min_chunk_bytes" mapstructure:"min_chunk_bytes"`
	UnlimitedWindowBytes int    `yaml:"unlimited_window_bytes" mapstructure:"unlimited_window_bytes"`
	DefaultChunkBytes    int    `yaml:"default_chunk_bytes" mapstructure:"default_chunk_bytes"`
	Balanced             bool   `yaml:"balanced" mapstructure:"balanced"`
	Overrides            string `yaml:"overrides" mapstructure:"overrides"` // "dim/size,..."
}

// FiltersConfig holds filter selection defaults.
type FiltersConfig struct {
	Format   string   `yaml:"format" mapstructure:"format"` // hdf5 or zarr
	Suppress bool     `yaml:"suppress" mapstructure:"suppress"`
	Rules    []string `yaml:"rules" mapstructure:"rules"` // "fqn,spec" or "fqn,none"
}

// LoggingConfig holds logging preferences.
type LoggingConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // text or json
	Level  string `yaml:"level" mapstructure:"level"`
}

// setDefaults registers the default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("plugin_path", []string{})

	v.SetDefault("chunking.min_chunk_bytes", 0)
	v.SetDefault("chunking.unlimited_window_bytes", layout.DefaultUnlimitedWindow)
	v.SetDefault("chunking.default_chunk_bytes", layout.DefaultChunkBytes)
	v.SetDefault("chunking.balanced", false)
	v.SetDefault("chunking.overrides", "")

	v.SetDefault("filters.format", "hdf5")
	v.SetDefault("filters.suppress", false)
	v.SetDefault("filters.rules", []string{})

	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.level", "info")
}

// bindEnvVars binds environment variable overrides with NCFILTER_ prefix.
// Viper's AutomaticEnv only works for top-level keys by default, so we
// explicitly bind nested keys to their NCFILTER_ equivalents.
func bindEnvVars(v *viper.Viper) {
	bindings := map[string]string{
		"plugin_path":                     "NCFILTER_PLUGIN_PATH",
		"chunking.min_chunk_bytes":        "NCFILTER_CHUNKING_MIN_CHUNK_BYTES",
		"chunking.unlimited_window_bytes": "NCFILTER_CHUNKING_UNLIMITED_WINDOW_BYTES",
		"chunking.default_chunk_bytes":    "NCFILTER_CHUNKING_DEFAULT_CHUNK_BYTES",
		"chunking.balanced":               "NCFILTER_CHUNKING_BALANCED",
		"chunking.overrides":              "NCFILTER_CHUNKING_OVERRIDES",
		"filters.format":                  "NCFILTER_FILTERS_FORMAT",
		"filters.suppress":                "NCFILTER_FILTERS_SUPPRESS",
		"logging.format":                  "NCFILTER_LOGGING_FORMAT",
		"logging.level":                   "NCFILTER_LOGGING_LEVEL",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ncfilter", "config.yaml"), nil
}

// Load reads the configuration from disk, env vars, and defaults.
// If configPath is empty, it looks in ~/.config/ncfilter/config.yaml.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	v.SetEnvPrefix("NCFILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Warn("could not determine home directory", "error", err)
		} else {
			v.AddConfigPath(filepath.Join(home, ".config", "ncfilter"))
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// If a config file was explicitly requested, treat missing file as an error.
			if configPath != "" {
				return nil, fmt.Errorf("reading config %s: %w", configPath, err)
			}
			slog.Debug("no config file found, using defaults", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// Entries may themselves be separator-joined lists (NCFILTER_PLUGIN_PATH).
	var dirs []string
	for _, entry := range cfg.PluginPath {
		dirs = append(dirs, pluginpath.Parse(entry, 0)...)
	}
	cfg.PluginPath = dirs

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if c.Chunking.MinChunkBytes < 0 {
		errs = append(errs, fmt.Errorf("chunking.min_chunk_bytes must be >= 0, got %d", c.Chunking.MinChunkBytes))
	}
	if c.Chunking.UnlimitedWindowBytes <= 0 {
		errs = append(errs, fmt.Errorf("chunking.unlimited_window_bytes must be > 0, got %d", c.Chunking.UnlimitedWindowBytes))
	}
	if c.Chunking.DefaultChunkBytes <= 0 {
		errs = append(errs, fmt.Errorf("chunking.default_chunk_bytes must be > 0, got %d", c.Chunking.DefaultChunkBytes))
	}
	switch c.Filters.Format {
	case "hdf5", "zarr":
	default:
		errs = append(errs, fmt.Errorf("filters.format must be hdf5 or zarr, got %q", c.Filters.Format))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return multierr.Combine(errs...)
}
