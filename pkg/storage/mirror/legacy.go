package mirror

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// EnsureLegacyDB creates the legacy tiny_db.json file as an empty JSON
// object if it does not exist yet.
//
// The file is kept only for backward compatibility with older tooling that
// expects it to be present. It is written exactly once here and never
// touched by any later save.
func EnsureLegacyDB(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat legacy db %s: %w", path, err)
	}

	data, err := json.Marshal(map[string]any{})
	if err != nil {
		return fmt.Errorf("failed to encode legacy db: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to create legacy db %s: %w", path, err)
	}
	return nil
}
