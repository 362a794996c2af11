// Package backup copies weight files into a backup target, skipping files
// whose name is already present there.
//
// Duplicate detection is by name only, never by content. Two distinct
// files sharing a name are treated as duplicates and the second is never
// copied. This is a deliberate trade: weight files are large, and hashing
// them on every save would cost far more than the rare false duplicate.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvetrano/trainvault/internal/logger"
)

// Outcome classifies what happened to a single source file.
type Outcome string

const (
	// OutcomeCopied means the file was copied into the target.
	OutcomeCopied Outcome = "copied"

	// OutcomeAlreadyPresent means a file with the same base name already
	// exists in the target; the source was skipped.
	OutcomeAlreadyPresent Outcome = "already_present"

	// OutcomeSourceMissing means the source path does not exist. Backup
	// is best-effort, so this is recorded rather than raised.
	OutcomeSourceMissing Outcome = "source_missing"
)

// Record describes the outcome for one source file. Records are ephemeral:
// produced per invocation, never persisted.
type Record struct {
	SourcePath string  `yaml:"source_path"`
	TargetName string  `yaml:"target_name"`
	Outcome    Outcome `yaml:"outcome"`
}

// Store is a backup target. Implementations exist for a local directory
// and for an S3 bucket.
type Store interface {
	// Has reports whether an object with the given base name already
	// exists in the target.
	Has(ctx context.Context, name string) (bool, error)

	// Put copies the local file at srcPath into the target under name.
	Put(ctx context.Context, name, srcPath string) error
}

// Deduplicator copies source files into a Store, one Record per source,
// in input order.
type Deduplicator struct {
	store Store
}

// NewDeduplicator returns a Deduplicator writing into store.
func NewDeduplicator(store Store) *Deduplicator {
	return &Deduplicator{store: store}
}

// Backup processes each source path in order and returns one Record per
// path.
//
// A missing source or an already-present name is recorded and skipped, not
// treated as an error. An error is returned only when the target itself
// fails (unreadable directory, failed copy, unreachable bucket); records
// for the sources processed so far are returned alongside it.
func (d *Deduplicator) Backup(ctx context.Context, sourcePaths []string) ([]Record, error) {
	records := make([]Record, 0, len(sourcePaths))

	for _, src := range sourcePaths {
		name := filepath.Base(src)
		record := Record{SourcePath: src, TargetName: name}

		if _, err := os.Stat(src); os.IsNotExist(err) {
			logger.Warn("backup source %s does not exist, skipping", src)
			record.Outcome = OutcomeSourceMissing
			records = append(records, record)
			continue
		}

		present, err := d.store.Has(ctx, name)
		if err != nil {
			return records, fmt.Errorf("failed to check backup target for %s: %w", name, err)
		}
		if present {
			logger.Debug("backup for %s already present, skipping", name)
			record.Outcome = OutcomeAlreadyPresent
			records = append(records, record)
			continue
		}

		if err := d.store.Put(ctx, name, src); err != nil {
			return records, fmt.Errorf("failed to back up %s: %w", src, err)
		}
		logger.Debug("backed up %s", name)
		record.Outcome = OutcomeCopied
		records = append(records, record)
	}

	return records, nil
}
