package storage

import "errors"

// StorageError represents a fatal error from storage root operations.
//
// Recoverable conditions never surface as errors: path conflicts are
// resolved internally and missing backup sources are recorded as outcomes.
// What remains here is structural: a mirror that cannot be parsed, a
// tampered layout, an exhausted namespace, or calls made in the wrong
// state.
type StorageError struct {
	// Code is the error category.
	Code ErrorCode

	// Message is a human-readable error description.
	Message string

	// Path is the filesystem path related to the error, if any.
	Path string
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// ErrorCode represents the category of a storage error.
type ErrorCode int

const (
	// ErrMirrorCorrupt indicates a mirror file exists but fails to
	// parse. Never auto-repaired: silently discarding metadata risks
	// orphaning artifact files.
	ErrMirrorCorrupt ErrorCode = iota

	// ErrSetupConflict indicates the root path exists but is missing
	// expected subpaths. A partial layout means something outside this
	// process touched the root.
	ErrSetupConflict

	// ErrNamespaceExhausted indicates the name allocator hit its
	// configured epoch cap.
	ErrNamespaceExhausted

	// ErrInvalidState indicates an operation was called before the state
	// it requires (load before setup, save before load).
	ErrInvalidState
)

// HasCode reports whether err is a *StorageError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var serr *StorageError
	return errors.As(err, &serr) && serr.Code == code
}
