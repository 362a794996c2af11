// Package mirror reads and writes the small metadata files a storage root
// keeps next to its artifacts.
//
// A mirror is a whole-file, whole-overwrite persisted copy of an in-memory
// mapping: loaded wholesale at setup/load time, held in memory as the
// single source of truth during a run, and written back wholesale at save
// time. The on-disk file is a snapshot and is stale between saves.
package mirror

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// yamlIndent matches the indentation the mirrors have always been written
// with, so hand edits and diffs stay stable.
const yamlIndent = 4

// CorruptError reports a mirror file that exists but cannot be parsed.
//
// This is always fatal: silently discarding or regenerating metadata risks
// orphaning artifact files, so no auto-repair is attempted.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("mirror file %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Load reads a mirror file into out.
//
// A missing or empty file is not an error; out keeps its zero value, which
// for every mirror type means an empty mapping. A file that exists but
// fails to parse yields a *CorruptError.
func Load(path string, out any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read mirror %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return &CorruptError{Path: path, Err: err}
	}
	return nil
}

// Write persists a mirror, replacing the previous file wholesale. Parent
// directories are created as needed.
func Write(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create mirror directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mirror %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write mirror %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush mirror %s: %w", path, err)
	}
	return nil
}
