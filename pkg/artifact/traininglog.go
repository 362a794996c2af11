package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EpochRecord captures the metrics of one training epoch.
type EpochRecord struct {
	Epoch     int       `yaml:"epoch"`
	Loss      float64   `yaml:"loss"`
	Accuracy  float64   `yaml:"accuracy"`
	Timestamp time.Time `yaml:"timestamp"`
}

// TrainingLog accumulates per-epoch metrics across save/load cycles.
type TrainingLog struct {
	History []EpochRecord `yaml:"history"`
}

// NewTrainingLog returns an empty log.
func NewTrainingLog() *TrainingLog {
	return &TrainingLog{}
}

// AddEpoch appends one epoch's metrics, stamped with the current time.
func (l *TrainingLog) AddEpoch(epoch int, loss, accuracy float64) {
	l.History = append(l.History, EpochRecord{
		Epoch:     epoch,
		Loss:      loss,
		Accuracy:  accuracy,
		Timestamp: time.Now().UTC(),
	})
}

// Epochs reports how many epoch records the log holds.
func (l *TrainingLog) Epochs() int {
	return len(l.History)
}

// Serialize writes the log as YAML.
func (l *TrainingLog) Serialize(path string) error {
	return writeYAML(path, l)
}

// Deserialize replaces the log with the content at path.
func (l *TrainingLog) Deserialize(path string) error {
	return readYAML(path, l)
}

func writeYAML(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory for %s: %w", path, err)
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode artifact %s: %w", path, err)
	}
	return nil
}
