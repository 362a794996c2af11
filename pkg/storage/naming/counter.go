// Package naming allocates collision-free names for checkpoint folders and
// artifact files inside a storage root.
//
// Two schemes are provided. The counter scheme produces recency-ordered
// names: counters descend from 999 so that the newest entry sorts first in a
// plain ascending directory listing, and a '#' prefix escapes counter
// overflow without breaking that ordering ('#' sorts before every digit).
// The alphanumeric scheme produces fixed-length random base-62 names for
// contexts where only uniqueness matters.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// counterStart is the first counter value in a fresh epoch.
	counterStart = 999

	// counterFloor is the lowest counter value an epoch may use. Going
	// below it wraps to a new epoch instead.
	counterFloor = 100
)

// ErrNamespaceExhausted is returned by CounterAllocator.Allocate when a
// maximum epoch is configured and the next allocation would exceed it.
// Without a configured cap epochs grow without bound and this error is
// never returned.
var ErrNamespaceExhausted = fmt.Errorf("counter namespace exhausted")

// Name is a parsed counter name.
//
// Epoch counts how many times the counter has wrapped from 100 back to 999.
// It is rendered as a '#' prefix of that length, so names from a newer epoch
// sort before every name of any older epoch.
type Name struct {
	Epoch   int
	Counter int
}

// String renders the name: ('#' * epoch) + counter digits.
func (n Name) String() string {
	return strings.Repeat("#", n.Epoch) + strconv.Itoa(n.Counter)
}

// ParseName parses a directory entry against the counter grammar.
//
// Anything after the first underscore is a semantic suffix and is ignored;
// only the leading '#' run and the three counter digits participate in
// ordering. Returns false for entries that do not match the grammar.
func ParseName(entry string) (Name, bool) {
	epoch := 0
	for epoch < len(entry) && entry[epoch] == '#' {
		epoch++
	}

	digits := entry[epoch:]
	if i := strings.IndexByte(digits, '_'); i >= 0 {
		digits = digits[:i]
	}
	if len(digits) != 3 {
		return Name{}, false
	}

	counter, err := strconv.Atoi(digits)
	if err != nil || counter < counterFloor || counter > counterStart {
		return Name{}, false
	}

	return Name{Epoch: epoch, Counter: counter}, true
}

// CounterAllocator produces descending counter names under a parent
// directory.
//
// The zero value is ready to use and has no epoch cap.
type CounterAllocator struct {
	// MaxEpoch caps epoch growth when positive. An allocation that would
	// require an epoch greater than MaxEpoch fails with
	// ErrNamespaceExhausted. Zero means unlimited.
	MaxEpoch int
}

// Allocate returns the next counter name under parentDir without creating
// anything on disk.
//
// The parent is scanned once: among all entries that parse against the
// counter grammar, the highest epoch wins, and within that epoch the next
// name is one below the lowest counter in use. An empty directory yields
// "999". When the counter would drop below 100 the epoch grows by one and
// the counter resets to 999.
func (a *CounterAllocator) Allocate(parentDir string) (string, error) {
	entries, err := os.ReadDir(parentDir)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to scan %s: %w", parentDir, err)
	}

	next := Name{Epoch: 0, Counter: counterStart}
	found := false
	for _, entry := range entries {
		name, ok := ParseName(entry.Name())
		if !ok {
			continue
		}
		if !found || name.Epoch > next.Epoch ||
			(name.Epoch == next.Epoch && name.Counter < next.Counter) {
			next = name
			found = true
		}
	}

	if found {
		if next.Counter > counterFloor {
			next.Counter--
		} else {
			next.Epoch++
			next.Counter = counterStart
		}
	}

	if a.MaxEpoch > 0 && next.Epoch > a.MaxEpoch {
		return "", fmt.Errorf("%w: epoch %d exceeds cap %d under %s",
			ErrNamespaceExhausted, next.Epoch, a.MaxEpoch, parentDir)
	}

	return next.String(), nil
}

// AllocateDir allocates the next counter name under parentDir and creates
// it as a directory. A non-empty semanticID is appended after an
// underscore; it does not affect ordering or uniqueness.
func (a *CounterAllocator) AllocateDir(parentDir, semanticID string) (string, error) {
	name, err := a.Allocate(parentDir)
	if err != nil {
		return "", err
	}
	if semanticID != "" {
		name = name + "_" + semanticID
	}

	dir := filepath.Join(parentDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}
