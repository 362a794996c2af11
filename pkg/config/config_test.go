package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.Backup.Type != "filesystem" {
		t.Errorf("Expected default backup type filesystem, got %q", cfg.Backup.Type)
	}
	if cfg.Naming.RandomLength != 8 {
		t.Errorf("Expected default random length 8, got %d", cfg.Naming.RandomLength)
	}
	if cfg.Naming.RandomRetries != 32 {
		t.Errorf("Expected default random retries 32, got %d", cfg.Naming.RandomRetries)
	}
}

func TestApplyDefaults_NormalizesLogLevel(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "debug"}}

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level DEBUG, got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Naming: NamingConfig{RandomLength: 12, RandomRetries: 5},
		Backup: BackupConfig{Type: "s3"},
	}

	ApplyDefaults(cfg)

	if cfg.Naming.RandomLength != 12 {
		t.Errorf("Expected explicit random length 12 preserved, got %d", cfg.Naming.RandomLength)
	}
	if cfg.Naming.RandomRetries != 5 {
		t.Errorf("Expected explicit random retries 5 preserved, got %d", cfg.Naming.RandomRetries)
	}
	if cfg.Backup.Type != "s3" {
		t.Errorf("Expected explicit backup type s3 preserved, got %q", cfg.Backup.Type)
	}
	if cfg.Backup.S3 == nil {
		t.Error("Expected S3 options map to be initialized")
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidBackupType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Backup.Type = "ftp"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid backup type")
	}
}

func TestValidate_MissingStorageRoot(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.Root = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for missing storage root")
	}
}

func TestValidate_SemanticIDWithoutContainerMode(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.SemanticID = "unet_large"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for semantic_id without container_mode")
	}
	if !strings.Contains(err.Error(), "container_mode") {
		t.Errorf("Expected 'container_mode' error, got: %v", err)
	}
}

func TestValidate_S3BackupRequiresBucket(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Backup.Type = "s3"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for S3 backup without bucket")
	}
	if !strings.Contains(err.Error(), "bucket") {
		t.Errorf("Expected 'bucket' error, got: %v", err)
	}
}

func TestValidate_NegativeMaxEpoch(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Naming.MaxEpoch = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for negative max epoch")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
logging:
    level: debug
storage:
    root: /data/runs
    container_mode: true
    semantic_id: resnet
naming:
    max_epoch: 3
backup:
    type: filesystem
    filesystem:
        path: /data/backups
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Storage.Root != "/data/runs" {
		t.Errorf("Expected root /data/runs, got %q", cfg.Storage.Root)
	}
	if !cfg.Storage.ContainerMode {
		t.Error("Expected container mode enabled")
	}
	if cfg.Storage.SemanticID != "resnet" {
		t.Errorf("Expected semantic ID resnet, got %q", cfg.Storage.SemanticID)
	}
	if cfg.Naming.MaxEpoch != 3 {
		t.Errorf("Expected max epoch 3, got %d", cfg.Naming.MaxEpoch)
	}
	if got, _ := cfg.Backup.Filesystem["path"].(string); got != "/data/backups" {
		t.Errorf("Expected filesystem backup path /data/backups, got %q", got)
	}
}

func TestLoad_InvalidFileFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
storage:
    root: /data/runs
backup:
    type: carrier-pigeon
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected load to fail validation for unknown backup type")
	}
}

func TestCreateBackupStore_Filesystem(t *testing.T) {
	root := t.TempDir()
	cfg := &BackupConfig{
		Type:       "filesystem",
		Filesystem: map[string]any{},
	}

	store, err := CreateBackupStore(context.Background(), cfg, root)
	if err != nil {
		t.Fatalf("CreateBackupStore failed: %v", err)
	}
	if store == nil {
		t.Fatal("Expected a backup store")
	}

	// Default path is backups/weights under the storage root
	expected := filepath.Join(root, "backups", "weights")
	if _, err := os.Stat(expected); err != nil {
		t.Errorf("Expected backup directory %s to exist: %v", expected, err)
	}
}

func TestCreateBackupStore_FilesystemExplicitPath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "offsite")
	cfg := &BackupConfig{
		Type:       "filesystem",
		Filesystem: map[string]any{"path": target},
	}

	if _, err := CreateBackupStore(context.Background(), cfg, dir); err != nil {
		t.Fatalf("CreateBackupStore failed: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("Expected backup directory %s to exist: %v", target, err)
	}
}

func TestCreateBackupStore_S3RequiresBucket(t *testing.T) {
	cfg := &BackupConfig{
		Type: "s3",
		S3:   map[string]any{"region": "us-east-1"},
	}

	_, err := CreateBackupStore(context.Background(), cfg, t.TempDir())
	if err == nil {
		t.Fatal("Expected error for S3 config without bucket")
	}
}

func TestCreateBackupStore_UnknownType(t *testing.T) {
	cfg := &BackupConfig{Type: "tape"}

	_, err := CreateBackupStore(context.Background(), cfg, t.TempDir())
	if err == nil {
		t.Fatal("Expected error for unknown backup type")
	}
	if !strings.Contains(err.Error(), "unknown backup target type") {
		t.Errorf("Expected 'unknown backup target type' error, got: %v", err)
	}
}
