package config

import "strings"

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Target-specific defaults are handled by target implementations
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyNamingDefaults(&cfg.Naming)
	applyBackupDefaults(&cfg.Backup)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)
}

// applyNamingDefaults sets name allocator defaults.
func applyNamingDefaults(cfg *NamingConfig) {
	// MaxEpoch defaults to 0 (unlimited epoch growth)

	if cfg.RandomLength == 0 {
		cfg.RandomLength = 8
	}
	if cfg.RandomRetries == 0 {
		cfg.RandomRetries = 32
	}
}

// applyBackupDefaults sets backup target defaults.
func applyBackupDefaults(cfg *BackupConfig) {
	if cfg.Type == "" {
		cfg.Type = "filesystem"
	}

	// Initialize maps if nil
	if cfg.Filesystem == nil {
		cfg.Filesystem = make(map[string]any)
	}
	if cfg.S3 == nil {
		cfg.S3 = make(map[string]any)
	}

	// The filesystem target defaults to backups/weights under the storage
	// root, which the storage layer resolves at setup. An explicit path
	// here overrides that.
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Logging: LoggingConfig{},
		Storage: StorageConfig{
			Root: "./trainvault-data",
		},
		Naming: NamingConfig{},
		Backup: BackupConfig{
			Filesystem: make(map[string]any),
			S3:         make(map[string]any),
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
