// Package filetree maintains the in-memory mirror of the files a storage
// root has written over its lifetime.
//
// The registry is append-only from the outside: unregistering a path marks
// it removed but keeps the entry, so the snapshot always records everything
// that ever existed. Deleting the file on disk, if wanted at all, is the
// caller's job.
package filetree

import "time"

// Entry describes one registered path.
type Entry struct {
	// Path is the path relative to the storage root.
	Path string `yaml:"path"`

	// Removed marks a retired path. The entry stays in the registry.
	Removed bool `yaml:"removed"`

	// LastModified is the time of the last Register or Unregister call
	// for this path.
	LastModified time.Time `yaml:"last_modified"`
}

// Registry is the in-memory file-tree mapping. It is not safe for
// concurrent use; the storage root owns it for the lifetime of a run.
type Registry struct {
	entries map[string]Entry
	now     func() time.Time
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Restore replaces the registry contents with a previously persisted
// snapshot. Used when loading the file-tree mirror at setup.
func (r *Registry) Restore(snapshot map[string]Entry) {
	r.entries = make(map[string]Entry, len(snapshot))
	for path, entry := range snapshot {
		r.entries[path] = entry
	}
}

// Register inserts or updates the entry for path with the current
// timestamp and removed=false.
func (r *Registry) Register(path string) {
	r.entries[path] = Entry{
		Path:         path,
		Removed:      false,
		LastModified: r.now(),
	}
}

// Unregister marks the entry for path removed. The entry is kept; a path
// that was never registered is ignored.
func (r *Registry) Unregister(path string) {
	entry, ok := r.entries[path]
	if !ok {
		return
	}
	entry.Removed = true
	entry.LastModified = r.now()
	r.entries[path] = entry
}

// Snapshot returns a copy of the full mapping for persistence.
func (r *Registry) Snapshot() map[string]Entry {
	snapshot := make(map[string]Entry, len(r.entries))
	for path, entry := range r.entries {
		snapshot[path] = entry
	}
	return snapshot
}

// Len reports how many entries the registry holds, removed ones included.
func (r *Registry) Len() int {
	return len(r.entries)
}
