package naming

import (
	"fmt"
	"os"
	"path/filepath"
)

// Resolve returns a path guaranteed not to collide with an existing entry.
//
// If pathNoSuffix+suffix is free it is returned unchanged as both values.
// Otherwise "_1", "_2", ... are appended to the base name (before the
// suffix) and the first free combination is returned, together with the
// originally requested path so the caller can report the conflict. Parent
// directories are created in either case. Nothing is ever overwritten or
// deleted.
func Resolve(pathNoSuffix, suffix string) (chosen, original string, err error) {
	original = pathNoSuffix + suffix

	if err := os.MkdirAll(filepath.Dir(original), 0755); err != nil {
		return "", "", fmt.Errorf("failed to create parent directories for %s: %w", original, err)
	}

	chosen = original
	for id := 1; exists(chosen); id++ {
		chosen = fmt.Sprintf("%s_%d%s", pathNoSuffix, id, suffix)
	}
	return chosen, original, nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
