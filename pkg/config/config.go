package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete trainvault configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (TRAINVAULT_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values
//
// The backup section follows the store configuration pattern: each target
// implementation defines its own options map, and only the section
// matching the selected type is used.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Storage locates the storage root and how it is opened
	Storage StorageConfig `mapstructure:"storage"`

	// Naming tunes the name allocators
	Naming NamingConfig `mapstructure:"naming"`

	// Backup specifies the weight backup target type and type-specific
	// configuration
	Backup BackupConfig `mapstructure:"backup"`

	// Metrics controls Prometheus metrics collection
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// StorageConfig locates the storage root.
type StorageConfig struct {
	// Root is the storage root path, or the container path when
	// ContainerMode is set
	Root string `mapstructure:"root" validate:"required"`

	// ContainerMode treats Root as a container of storage roots: a new
	// recency-ordered folder is allocated inside it at setup
	ContainerMode bool `mapstructure:"container_mode"`

	// SemanticID names the allocated folder in container mode
	// (e.g. "unet_large" yields "999_unet_large")
	SemanticID string `mapstructure:"semantic_id"`
}

// NamingConfig tunes the name allocators.
type NamingConfig struct {
	// MaxEpoch caps counter epoch growth; 0 means unlimited
	MaxEpoch int `mapstructure:"max_epoch" validate:"gte=0"`

	// RandomLength is the length of alphanumeric names
	RandomLength int `mapstructure:"random_length" validate:"gt=0"`

	// RandomRetries bounds collision retries per length before the
	// alphanumeric allocator widens the name
	RandomRetries int `mapstructure:"random_retries" validate:"gt=0"`
}

// BackupConfig specifies the weight backup target.
//
// The Type field determines which target implementation is used. Only the
// corresponding type-specific configuration section is used.
type BackupConfig struct {
	// Type specifies which backup target to use
	// Valid values: filesystem, s3
	Type string `mapstructure:"type" validate:"required,oneof=filesystem s3"`

	// Filesystem contains filesystem-specific configuration
	// Only used when Type = "filesystem"
	Filesystem map[string]any `mapstructure:"filesystem"`

	// S3 contains S3-specific configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3"`
}

// MetricsConfig controls metrics collection.
type MetricsConfig struct {
	// Enabled turns on the Prometheus registry
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns the loaded and validated configuration.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures environment variable and config file handling.
func setupViper(v *viper.Viper, configPath string) {
	// Example: TRAINVAULT_STORAGE_ROOT=/data/runs
	v.SetEnvPrefix("TRAINVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. A missing
// file is acceptable; defaults cover everything except the root path.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "trainvault")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "trainvault")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
