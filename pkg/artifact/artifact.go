// Package artifact defines the domain objects a storage root persists: the
// training log and the model wrapper.
//
// The storage layer only depends on the Artifact contract; what an
// artifact contains is its own business.
package artifact

// Artifact is anything a storage root can persist and restore.
type Artifact interface {
	// Serialize writes the artifact to path, replacing any previous
	// content.
	Serialize(path string) error

	// Deserialize replaces the artifact's state with the content at
	// path.
	Deserialize(path string) error
}
