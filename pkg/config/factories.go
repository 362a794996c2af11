package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/mvetrano/trainvault/internal/logger"
	"github.com/mvetrano/trainvault/pkg/storage/backup"
	backupFs "github.com/mvetrano/trainvault/pkg/storage/backup/fs"
	backupS3 "github.com/mvetrano/trainvault/pkg/storage/backup/s3"
)

// CreateBackupStore creates a backup target based on configuration.
//
// This factory function uses the Type field to determine which target
// implementation to create, then decodes the type-specific configuration
// from the corresponding map and passes it to the target's constructor.
//
// Supported types:
//   - "filesystem": Uses pkg/storage/backup/fs (local directory)
//   - "s3": Uses pkg/storage/backup/s3 (Amazon S3 or compatible storage)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Backup target configuration
//   - storageRoot: Storage root path, used to resolve the default
//     filesystem backup directory
//
// Returns:
//   - backup.Store: Initialized backup target
//   - error: Configuration or initialization error
func CreateBackupStore(ctx context.Context, cfg *BackupConfig, storageRoot string) (backup.Store, error) {
	switch cfg.Type {
	case "filesystem":
		return createFilesystemBackupStore(ctx, cfg.Filesystem, storageRoot)
	case "s3":
		return createS3BackupStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown backup target type: %q (supported: filesystem, s3)", cfg.Type)
	}
}

// createFilesystemBackupStore creates a directory-backed backup target.
func createFilesystemBackupStore(ctx context.Context, options map[string]any, storageRoot string) (backup.Store, error) {
	// Check context before creating store
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Define the configuration struct for the filesystem backup target
	type FilesystemBackupConfig struct {
		Path string `mapstructure:"path"`
	}

	// Decode the options into the config struct
	var storeCfg FilesystemBackupConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem backup config: %w", err)
	}

	// Default to the backups/weights folder inside the storage root
	if storeCfg.Path == "" {
		storeCfg.Path = filepath.Join(storageRoot, "backups", "weights")
	}

	store, err := backupFs.New(storeCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem backup target: %w", err)
	}

	return store, nil
}

// createS3BackupStore creates an S3-based backup target.
func createS3BackupStore(ctx context.Context, options map[string]any) (backup.Store, error) {
	// Define the configuration struct for the S3 backup target
	type S3BackupConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	// Decode the options into the config struct
	var storeCfg S3BackupConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 backup config: %w", err)
	}

	// Validate required fields
	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 backup target: bucket is required")
	}

	if storeCfg.Region == "" {
		return nil, fmt.Errorf("S3 backup target: region is required")
	}

	// ========================================================================
	// Step 1: Build AWS Config
	// ========================================================================

	var configOptions []func(*awsConfig.LoadOptions) error

	// Set region
	configOptions = append(configOptions, awsConfig.WithRegion(storeCfg.Region))

	// Set custom endpoint if provided (for MinIO, Localstack, etc.)
	if storeCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Set credentials if provided, otherwise use default credential chain
	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeCfg.AccessKeyID,
			storeCfg.SecretAccessKey,
			"", // session token (empty for static credentials)
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	// Configure retries for better resilience against temporary S3 failures
	maxRetries := storeCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries // Retry for transient errors (502, 503, timeouts, etc.)
		})
	}))

	// Load AWS config
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// ========================================================================
	// Step 2: Create S3 Client
	// ========================================================================

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Force path-style addressing for compatibility with MinIO/Localstack
		if storeCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	// ========================================================================
	// Step 3: Create S3 Backup Target
	// ========================================================================

	store, err := backupS3.New(backupS3.Config{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 backup target: %w", err)
	}

	logger.Info("S3 backup target initialized: bucket=%s, region=%s, prefix=%s",
		storeCfg.Bucket, storeCfg.Region, storeCfg.KeyPrefix)

	return store, nil
}
