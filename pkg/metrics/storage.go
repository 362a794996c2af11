package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StorageMetrics provides observability for storage root operations.
//
// The interface is optional: pass nil (or the value returned while metrics
// are disabled) and operations proceed without collection.
type StorageMetrics interface {
	// RecordSave records a completed save cycle with its duration and
	// outcome.
	RecordSave(duration time.Duration, err error)

	// RecordAllocation records one name allocation. kind is "counter" or
	// "alphanumeric".
	RecordAllocation(kind string)

	// RecordBackup records one backup record outcome ("copied",
	// "already_present", "source_missing").
	RecordBackup(outcome string)

	// SetFileTreeSize updates the current number of file-tree entries.
	SetFileTreeSize(count int)
}

type storageMetrics struct {
	savesTotal       *prometheus.CounterVec
	saveDuration     prometheus.Histogram
	allocationsTotal *prometheus.CounterVec
	backupsTotal     *prometheus.CounterVec
	fileTreeSize     prometheus.Gauge
}

// NewStorageMetrics creates a Prometheus-backed StorageMetrics, or a no-op
// implementation if metrics are disabled.
func NewStorageMetrics() StorageMetrics {
	if !IsEnabled() {
		return &noopStorageMetrics{}
	}

	reg := GetRegistry()

	return &storageMetrics{
		savesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "trainvault_saves_total",
				Help: "Total number of save cycles by status",
			},
			[]string{"status"},
		),
		saveDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trainvault_save_duration_seconds",
				Help:    "Duration of save cycles in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
			},
		),
		allocationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "trainvault_name_allocations_total",
				Help: "Total number of name allocations by scheme",
			},
			[]string{"kind"},
		),
		backupsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "trainvault_backup_records_total",
				Help: "Total number of backup records by outcome",
			},
			[]string{"outcome"},
		),
		fileTreeSize: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "trainvault_file_tree_entries",
				Help: "Current number of file-tree registry entries, removed ones included",
			},
		),
	}
}

func (m *storageMetrics) RecordSave(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.savesTotal.WithLabelValues(status).Inc()
	m.saveDuration.Observe(duration.Seconds())
}

func (m *storageMetrics) RecordAllocation(kind string) {
	m.allocationsTotal.WithLabelValues(kind).Inc()
}

func (m *storageMetrics) RecordBackup(outcome string) {
	m.backupsTotal.WithLabelValues(outcome).Inc()
}

func (m *storageMetrics) SetFileTreeSize(count int) {
	m.fileTreeSize.Set(float64(count))
}

// noopStorageMetrics is used when metrics are disabled.
type noopStorageMetrics struct{}

func (*noopStorageMetrics) RecordSave(time.Duration, error) {}
func (*noopStorageMetrics) RecordAllocation(string)         {}
func (*noopStorageMetrics) RecordBackup(string)             {}
func (*noopStorageMetrics) SetFileTreeSize(int)             {}
