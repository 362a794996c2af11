package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvetrano/trainvault/pkg/storage/mirror"
)

// Fixed names inside a storage root. Callers work with these through the
// Root accessors; the constants exist so no path is ever assembled from a
// bare string twice.
const (
	MainYAML          = "main.yaml"
	SharedStorageYAML = "shared_storage.yaml"
	FileTreeYAML      = "file_tree.yaml"
	TinyDBJSON        = "tiny_db.json"

	OldYamlsFolder = "old_yamls"
	FilesFolder    = "files"

	// Subareas under files/ used by external callers (plot output,
	// showcase images). Created at setup, never written by this core.
	GraphsFolder             = "files/graphs"
	TestShowcaseImagesFolder = "files/test_showcase_images"

	// BackupsWeightsFolder is the default deduplicated backup target for
	// model weights.
	BackupsWeightsFolder = "backups/weights"
)

// requiredEntries are the entries whose joint presence marks a complete
// root. A root containing some but not all of them is treated as tampered
// with and refused.
var requiredEntries = []string{
	MainYAML,
	SharedStorageYAML,
	FileTreeYAML,
	TinyDBJSON,
	OldYamlsFolder,
	FilesFolder,
	BackupsWeightsFolder,
}

// inspectLayout counts how many required entries exist under root.
func inspectLayout(root string) (present int, missing []string, err error) {
	for _, entry := range requiredEntries {
		_, statErr := os.Stat(filepath.Join(root, entry))
		switch {
		case statErr == nil:
			present++
		case os.IsNotExist(statErr):
			missing = append(missing, entry)
		default:
			return 0, nil, fmt.Errorf("failed to inspect %s: %w", filepath.Join(root, entry), statErr)
		}
	}
	return present, missing, nil
}

// createLayout materializes the full directory layout and the empty
// mirror files. Existing entries are left alone, so it is safe to call on
// a root that is partially or fully materialized.
func createLayout(root string) error {
	dirs := []string{
		OldYamlsFolder,
		FilesFolder,
		GraphsFolder,
		TestShowcaseImagesFolder,
		BackupsWeightsFolder,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	mirrors := []string{MainYAML, SharedStorageYAML, FileTreeYAML}
	for _, name := range mirrors {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := mirror.Write(path, map[string]any{}); err != nil {
				return err
			}
		}
	}

	return mirror.EnsureLegacyDB(filepath.Join(root, TinyDBJSON))
}
