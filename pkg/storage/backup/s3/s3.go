// Package s3 implements a backup target on an S3 or S3-compatible bucket,
// for keeping weight backups off the training machine.
package s3

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Store writes backups as objects under an optional key prefix.
//
// Object keys are "<prefix><name>". The bucket must already exist; this
// store never creates it.
type Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// Config contains the settings for an S3 backup store.
type Config struct {
	// Client is the configured S3 client.
	Client *s3.Client

	// Bucket is the bucket name.
	Bucket string

	// KeyPrefix is prepended to every object key, e.g. "backups/weights/".
	KeyPrefix string
}

// New validates the configuration and returns a Store.
func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	return &Store{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (s *Store) key(name string) string {
	return s.keyPrefix + name
}

// Has reports whether an object with the given name exists in the bucket.
func (s *Store) Has(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check for backup object %s: %w", s.key(name), err)
	}
	return true, nil
}

// Put uploads the local file at srcPath as an object named after name.
func (s *Store) Put(ctx context.Context, name, srcPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open backup source %s: %w", srcPath, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat backup source %s: %w", srcPath, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(name)),
		Body:          src,
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return fmt.Errorf("failed to upload backup object %s: %w", s.key(name), err)
	}
	return nil
}
