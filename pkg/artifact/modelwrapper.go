package artifact

import "time"

// ModelWrapper wraps a trained model: its descriptive metadata and a
// reference to the weights file on disk.
//
// The weights themselves are written by the training code; the wrapper
// only records where they are, so the storage layer can back them up.
type ModelWrapper struct {
	Architecture   string         `yaml:"architecture,omitempty"`
	CreatedAt      time.Time      `yaml:"created_at"`
	LastUpdated    time.Time      `yaml:"last_updated"`
	TrainingEpochs int            `yaml:"training_epochs"`
	Metadata       map[string]any `yaml:"metadata,omitempty"`

	// WeightsPath is the current weights file, relative to the storage
	// root. Empty until the first update.
	WeightsPath string `yaml:"weights_path,omitempty"`
}

// NewModelWrapper returns a wrapper stamped with the current time.
func NewModelWrapper() *ModelWrapper {
	now := time.Now().UTC()
	return &ModelWrapper{
		CreatedAt:   now,
		LastUpdated: now,
		Metadata:    make(map[string]any),
	}
}

// UpdateWeights records a new weights file and bumps the epoch counter.
func (m *ModelWrapper) UpdateWeights(weightsPath string) {
	m.WeightsPath = weightsPath
	m.TrainingEpochs++
	m.LastUpdated = time.Now().UTC()
}

// AddMetadata attaches a free-form key/value pair to the model.
func (m *ModelWrapper) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// Serialize writes the wrapper as YAML.
func (m *ModelWrapper) Serialize(path string) error {
	return writeYAML(path, m)
}

// Deserialize replaces the wrapper with the content at path.
func (m *ModelWrapper) Deserialize(path string) error {
	return readYAML(path, m)
}
