package naming

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
)

// alphabet is the 62-character base-62 alphabet: digits, uppercase,
// lowercase.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// defaultRetries bounds how many fresh draws are attempted at a given
// length before the allocator widens the name by one character.
const defaultRetries = 32

// AlphanumericAllocator produces fixed-length random base-62 names under a
// parent directory. Names carry no ordering; use CounterAllocator where
// recency ordering matters.
//
// The zero value is ready to use.
type AlphanumericAllocator struct {
	// Retries bounds draw attempts per length before widening. Zero
	// means defaultRetries.
	Retries int
}

// Allocate returns a random base-62 name of the given length that does not
// collide with any entry under parentDir. On repeated collisions the length
// grows by one character and drawing continues.
//
// Nothing is created on disk; the name is only checked against the current
// directory contents.
func (a *AlphanumericAllocator) Allocate(parentDir string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("name length must be positive, got %d", length)
	}

	retries := a.Retries
	if retries <= 0 {
		retries = defaultRetries
	}

	for {
		for attempt := 0; attempt < retries; attempt++ {
			name, err := randomName(length)
			if err != nil {
				return "", err
			}
			if _, err := os.Lstat(filepath.Join(parentDir, name)); os.IsNotExist(err) {
				return name, nil
			}
		}
		// Every draw at this length collided; widen and keep going.
		length++
	}
}

// AllocateDir allocates a random name under parentDir and creates it as a
// directory.
func (a *AlphanumericAllocator) AllocateDir(parentDir string, length int) (string, error) {
	name, err := a.Allocate(parentDir, length)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(parentDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// randomName draws a uniform random base-62 string of the given length.
func randomName(length int) (string, error) {
	base := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("failed to draw random name: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
