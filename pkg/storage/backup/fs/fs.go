// Package fs implements a backup target on a local directory, typically
// the storage root's backups/weights folder.
package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store writes backups into a single flat directory.
type Store struct {
	dir string
}

// New creates the backup directory if needed and returns a Store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory this store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Has reports whether a file with the given name exists in the backup
// directory.
func (s *Store) Has(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(filepath.Join(s.dir, name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat backup %s: %w", name, err)
}

// Put copies srcPath into the backup directory byte for byte.
func (s *Store) Put(ctx context.Context, name, srcPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open backup source %s: %w", srcPath, err)
	}
	defer src.Close()

	dstPath := filepath.Join(s.dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create backup %s: %w", dstPath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", srcPath, dstPath, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to close backup %s: %w", dstPath, err)
	}
	return nil
}
