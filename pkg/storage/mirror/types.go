package mirror

import (
	"time"

	"github.com/mvetrano/trainvault/pkg/storage/filetree"
)

// Main is the main mirror (main.yaml): references to the most recently
// saved artifacts. Paths are relative to the storage root.
//
// Unknown keys from hand-edited files land in Extra and survive a
// load/save round trip untouched.
type Main struct {
	// TrainingLogLatestPath points at the last saved training log.
	TrainingLogLatestPath string `yaml:"training_log_latest_path,omitempty"`

	// ModelWrapperLatestPath points at the last saved model wrapper.
	ModelWrapperLatestPath string `yaml:"model_wrapper_latest_path,omitempty"`

	Extra map[string]any `yaml:",inline"`
}

// Shared is the shared storage mirror (shared_storage.yaml): run-level
// bookkeeping that spans save cycles.
type Shared struct {
	// CreatedAt is set once, when the root is first set up.
	CreatedAt time.Time `yaml:"created_at,omitempty"`

	// RunID identifies the run that created this root.
	RunID string `yaml:"run_id,omitempty"`

	// LastCheckpoint is the checkpoint folder of the most recent save,
	// relative to the storage root.
	LastCheckpoint string `yaml:"last_checkpoint,omitempty"`

	// CurrentModelWeightsPath is the weights file the model wrapper
	// referenced at the most recent save.
	CurrentModelWeightsPath string `yaml:"current_model_weights_path,omitempty"`

	Extra map[string]any `yaml:",inline"`
}

// FileTree is the file-tree mirror (file_tree.yaml): the serialized
// registry snapshot, keyed by root-relative path.
type FileTree map[string]filetree.Entry
