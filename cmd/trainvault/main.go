package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mvetrano/trainvault/internal/logger"
	"github.com/mvetrano/trainvault/pkg/config"
	"github.com/mvetrano/trainvault/pkg/metrics"
	"github.com/mvetrano/trainvault/pkg/storage"
	"github.com/mvetrano/trainvault/pkg/storage/backup"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	rootPath := flag.String("root", "", "Storage root path (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (DEBUG, INFO, WARN, ERROR; overrides config)")
	demo := flag.Bool("demo", false, "Run a demo training loop with synthetic epochs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override config file and environment
	if *rootPath != "" {
		cfg.Storage.Root = *rootPath
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	// Configure logger
	logger.SetLevel(cfg.Logging.Level)

	fmt.Println("trainvault - versioned training artifact storage")
	logger.Info("Log level set to: %s", cfg.Logging.Level)
	logger.Info("Storage root: %s", cfg.Storage.Root)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics collection enabled")
	}

	ctx := context.Background()

	// A filesystem target with no explicit path lives inside the storage
	// root, which in container mode is only known after setup. Leave the
	// store nil in that case so setup places it itself.
	var backupStore backup.Store
	if cfg.Backup.Type != "filesystem" || cfg.Backup.Filesystem["path"] != nil {
		backupStore, err = config.CreateBackupStore(ctx, &cfg.Backup, cfg.Storage.Root)
		if err != nil {
			log.Fatalf("Failed to create backup target: %v", err)
		}
	}

	root, err := storage.Setup(ctx, cfg.Storage.Root, storage.Options{
		ContainerMode: cfg.Storage.ContainerMode,
		SemanticID:    cfg.Storage.SemanticID,
		MaxEpoch:      cfg.Naming.MaxEpoch,
		BackupStore:   backupStore,
		Metrics:       metrics.NewStorageMetrics(),
	})
	if err != nil {
		log.Fatalf("Failed to set up storage root: %v", err)
	}
	logger.Info("Storage root ready: %s", root.Path())

	if err := root.Load(ctx); err != nil {
		log.Fatalf("Failed to load artifacts: %v", err)
	}
	logger.Info("Artifacts loaded: %d training epochs on record", root.TrainingLog().Epochs())

	if *demo {
		if err := runDemo(ctx, root); err != nil {
			log.Fatalf("Demo run failed: %v", err)
		}
	}

	fmt.Println("Storage root summary:")
	fmt.Printf("  Path:            %s\n", root.Path())
	fmt.Printf("  Files folder:    %s\n", root.FilesDir())
	fmt.Printf("  Training epochs: %d\n", root.TrainingLog().Epochs())
	fmt.Printf("  Architecture:    %s\n", root.ModelWrapper().Architecture)
}

// runDemo records a few synthetic epochs, points the model at a fake
// weights file, and saves a checkpoint. Useful for smoke-testing a
// freshly configured root.
func runDemo(ctx context.Context, root *storage.Root) error {
	logs := root.TrainingLog()
	model := root.ModelWrapper()

	if model.Architecture == "" {
		model.Architecture = "demo_net"
	}

	start := logs.Epochs()
	for i := 1; i <= 3; i++ {
		epoch := start + i
		loss := 1.0 / float64(epoch)
		logs.AddEpoch(epoch, loss, 1.0-loss)
		logger.Info("Recorded epoch %d: loss=%.4f", epoch, loss)
	}

	weightsPath := filepath.Join(root.FilesDir(), "demo_weights.bin")
	if err := os.WriteFile(weightsPath, []byte("demo weights"), 0644); err != nil {
		return fmt.Errorf("failed to write demo weights: %w", err)
	}
	model.UpdateWeights(weightsPath)

	if err := root.Save(ctx); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	logger.Info("Checkpoint saved")
	return nil
}
