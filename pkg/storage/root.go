// Package storage coordinates a project-local storage root: a directory
// that persists versioned training artifacts and the small metadata
// mirrors describing them, across repeated runs of a long-lived process.
//
// The model is single-process and synchronous. One process owns a root for
// its lifetime; there is no locking and concurrent processes sharing a
// root are unsupported. Within one Save, artifact writes happen before
// registry updates, which happen before mirror persistence, so a crash in
// between leaves the mirrors stale but never pointing at a file that was
// not written.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvetrano/trainvault/internal/logger"
	"github.com/mvetrano/trainvault/pkg/artifact"
	"github.com/mvetrano/trainvault/pkg/metrics"
	"github.com/mvetrano/trainvault/pkg/storage/backup"
	backupfs "github.com/mvetrano/trainvault/pkg/storage/backup/fs"
	"github.com/mvetrano/trainvault/pkg/storage/filetree"
	"github.com/mvetrano/trainvault/pkg/storage/mirror"
	"github.com/mvetrano/trainvault/pkg/storage/naming"
)

// Artifact file names inside a checkpoint folder.
const (
	trainingLogFile  = "training_log"
	modelWrapperFile = "model_wrapper"
	yamlSuffix       = ".yaml"
)

// State tracks where a Root is in its lifecycle.
type State int

const (
	// StateUninitialized is a zero Root; only Setup produces anything
	// else.
	StateUninitialized State = iota

	// StateReady means the layout exists and the mirrors are in memory.
	StateReady

	// StateLoaded additionally has artifact handles reconstructed; Save
	// requires it.
	StateLoaded
)

// Options configures Setup. The zero value works for a plain root path
// with local backups and no metrics.
type Options struct {
	// ContainerMode treats the path given to Setup as a container of
	// storage roots: a new recency-ordered folder is allocated inside it
	// and set up as the actual root.
	ContainerMode bool

	// SemanticID is appended to the allocated folder name in container
	// mode (e.g. "999_unet_large"). Ignored otherwise.
	SemanticID string

	// MaxEpoch caps the checkpoint name allocator's epoch growth. Zero
	// means unlimited.
	MaxEpoch int

	// BackupStore overrides the backup target for model weights. Nil
	// selects the root's own backups/weights folder.
	BackupStore backup.Store

	// Metrics receives operation metrics. Nil selects the process
	// default (no-op unless the metrics registry is initialized).
	Metrics metrics.StorageMetrics
}

// Root is the handle to one storage root. It is the single writer for the
// root's mirrors during a run and is not safe for concurrent use.
type Root struct {
	path    string
	state   State
	counter naming.CounterAllocator

	main   mirror.Main
	shared mirror.Shared
	tree   *filetree.Registry

	dedup   *backup.Deduplicator
	metrics metrics.StorageMetrics

	logs  *artifact.TrainingLog
	model *artifact.ModelWrapper
}

// Setup opens or creates the storage root at path and loads its mirrors
// into memory.
//
// Setup is idempotent: a complete existing root is reused as-is, its
// mirrors loaded and nothing re-created or overwritten. A fresh path gets
// the full layout with empty mirrors. A path that exists with only part
// of the expected layout fails with ErrSetupConflict, since a partial
// layout means something outside this process touched the root.
func Setup(ctx context.Context, path string, opts Options) (*Root, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path %s: %w", path, err)
	}

	r := &Root{
		path:    absPath,
		counter: naming.CounterAllocator{MaxEpoch: opts.MaxEpoch},
		tree:    filetree.New(),
		metrics: opts.Metrics,
	}
	if r.metrics == nil {
		r.metrics = metrics.NewStorageMetrics()
	}

	if opts.ContainerMode {
		rootDir, err := r.counter.AllocateDir(absPath, opts.SemanticID)
		if err != nil {
			return nil, setupError(err)
		}
		r.metrics.RecordAllocation("counter")
		r.path = rootDir
		logger.Info("allocated storage root %s inside container %s", filepath.Base(rootDir), absPath)
	}

	present, missing, err := inspectLayout(r.path)
	if err != nil {
		return nil, err
	}
	switch {
	case len(missing) == 0:
		logger.Debug("reusing existing storage root %s", r.path)
	case present == 0:
		logger.Info("creating storage root %s", r.path)
		if err := createLayout(r.path); err != nil {
			return nil, err
		}
	default:
		return nil, &StorageError{
			Code:    ErrSetupConflict,
			Message: fmt.Sprintf("storage root is missing expected entries %v", missing),
			Path:    r.path,
		}
	}

	if err := r.loadMirrors(); err != nil {
		return nil, err
	}

	// Stamp run identity on first contact with a fresh root.
	if r.shared.CreatedAt.IsZero() {
		r.shared.CreatedAt = time.Now().UTC()
		r.shared.RunID = uuid.NewString()
		if err := mirror.Write(r.mirrorPath(SharedStorageYAML), &r.shared); err != nil {
			return nil, err
		}
	}

	if opts.BackupStore != nil {
		r.dedup = backup.NewDeduplicator(opts.BackupStore)
	} else {
		store, err := backupfs.New(filepath.Join(r.path, BackupsWeightsFolder))
		if err != nil {
			return nil, err
		}
		r.dedup = backup.NewDeduplicator(store)
	}

	r.state = StateReady
	return r, nil
}

// Path returns the absolute path of the storage root.
func (r *Root) Path() string {
	return r.path
}

// State returns the current lifecycle state.
func (r *Root) State() State {
	return r.state
}

// FilesDir returns the default parent for allocated artifact paths.
func (r *Root) FilesDir() string {
	return filepath.Join(r.path, FilesFolder)
}

// TrainingLog returns the loaded training log. Nil before Load.
func (r *Root) TrainingLog() *artifact.TrainingLog {
	return r.logs
}

// ModelWrapper returns the loaded model wrapper. Nil before Load.
func (r *Root) ModelWrapper() *artifact.ModelWrapper {
	return r.model
}

// Load reconstructs the artifact handles from the mirrors and the file
// layout.
//
// Paths the main mirror records as latest are deserialized; paths that do
// not exist yet are skipped, so a fresh project starts with empty
// artifacts. Requires Setup to have run.
func (r *Root) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.state < StateReady {
		return &StorageError{
			Code:    ErrInvalidState,
			Message: "load requires a set-up storage root",
		}
	}

	r.logs = artifact.NewTrainingLog()
	if err := r.loadArtifact(r.main.TrainingLogLatestPath, r.logs); err != nil {
		return err
	}

	r.model = artifact.NewModelWrapper()
	if err := r.loadArtifact(r.main.ModelWrapperLatestPath, r.model); err != nil {
		return err
	}

	r.state = StateLoaded
	logger.Debug("loaded artifacts from %s (log: %q, model: %q)",
		r.path, r.main.TrainingLogLatestPath, r.main.ModelWrapperLatestPath)
	return nil
}

// loadArtifact deserializes a from the root-relative path recorded in a
// mirror. An empty or not-yet-existing path leaves the artifact fresh.
func (r *Root) loadArtifact(relPath string, a artifact.Artifact) error {
	if relPath == "" {
		return nil
	}
	absPath := filepath.Join(r.path, relPath)
	if !fileExists(absPath) {
		logger.Warn("mirror references %s but it does not exist on disk, starting fresh", relPath)
		return nil
	}
	return a.Deserialize(absPath)
}

// Save persists both artifacts into a freshly allocated checkpoint folder
// and brings all three mirrors up to date.
//
// The sequence is: allocate target paths, write artifact payloads,
// update the registry, update the main mirror references, run the
// deduplicated weight backup, persist the mirrors. Requires Load to have
// run; afterwards the root returns to the ready state and a new load/save
// cycle may begin.
func (r *Root) Save(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.RecordSave(time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if r.state < StateLoaded {
		return &StorageError{
			Code:    ErrInvalidState,
			Message: "save requires loaded artifacts",
		}
	}

	// Step 1: allocate the checkpoint folder for this save.
	checkpointDir, err := r.counter.AllocateDir(r.FilesDir(), "")
	if err != nil {
		return setupError(err)
	}
	r.metrics.RecordAllocation("counter")

	// Step 2: write artifact payloads, resolving any path conflict
	// instead of overwriting.
	logPath, err := r.writeArtifact(checkpointDir, trainingLogFile, r.logs)
	if err != nil {
		return err
	}
	modelPath, err := r.writeArtifact(checkpointDir, modelWrapperFile, r.model)
	if err != nil {
		return err
	}

	// Step 3: registry updates, write-then-record order.
	relLogPath := r.rel(logPath)
	relModelPath := r.rel(modelPath)
	r.tree.Register(relLogPath)
	r.tree.Register(relModelPath)

	// Step 4: main mirror references the artifacts just written.
	r.main.TrainingLogLatestPath = relLogPath
	r.main.ModelWrapperLatestPath = relModelPath

	// Step 5: shared mirror bookkeeping and the weight backup.
	r.shared.LastCheckpoint = r.rel(checkpointDir)
	r.shared.CurrentModelWeightsPath = r.model.WeightsPath
	if r.model.WeightsPath != "" {
		weights := r.model.WeightsPath
		if !filepath.IsAbs(weights) {
			weights = filepath.Join(r.path, weights)
		}
		records, err := r.dedup.Backup(ctx, []string{weights})
		if err != nil {
			return err
		}
		for _, record := range records {
			r.metrics.RecordBackup(string(record.Outcome))
		}
	}

	// Step 6: persist all three mirrors. The legacy tiny_db.json is
	// never written here.
	if err := r.persistMirrors(); err != nil {
		return err
	}
	r.metrics.SetFileTreeSize(r.tree.Len())

	r.state = StateReady
	logger.Info("saved checkpoint %s", r.shared.LastCheckpoint)
	return nil
}

// FileTreeManage registers path in the file tree, or marks it removed
// when remove is true. The change is persisted at the next Save.
func (r *Root) FileTreeManage(path string, remove bool) error {
	if r.state < StateReady {
		return &StorageError{
			Code:    ErrInvalidState,
			Message: "file tree management requires a set-up storage root",
		}
	}

	relPath := r.rel(path)
	if remove {
		r.tree.Unregister(relPath)
	} else {
		r.tree.Register(relPath)
	}
	return nil
}

// writeArtifact serializes a into dir under name+yamlSuffix, shifting to a
// numbered sibling if the name is somehow taken.
func (r *Root) writeArtifact(dir, name string, a artifact.Artifact) (string, error) {
	chosen, original, err := naming.Resolve(filepath.Join(dir, name), yamlSuffix)
	if err != nil {
		return "", err
	}
	if chosen != original {
		logger.Warn("artifact path %s already exists, writing %s instead", original, chosen)
	}
	if err := a.Serialize(chosen); err != nil {
		return "", err
	}
	return chosen, nil
}

func (r *Root) loadMirrors() error {
	if err := mirror.Load(r.mirrorPath(MainYAML), &r.main); err != nil {
		return mirrorError(err)
	}
	if err := mirror.Load(r.mirrorPath(SharedStorageYAML), &r.shared); err != nil {
		return mirrorError(err)
	}

	tree := mirror.FileTree{}
	if err := mirror.Load(r.mirrorPath(FileTreeYAML), &tree); err != nil {
		return mirrorError(err)
	}
	r.tree.Restore(tree)
	return nil
}

func (r *Root) persistMirrors() error {
	if err := mirror.Write(r.mirrorPath(MainYAML), &r.main); err != nil {
		return err
	}
	if err := mirror.Write(r.mirrorPath(SharedStorageYAML), &r.shared); err != nil {
		return err
	}
	return mirror.Write(r.mirrorPath(FileTreeYAML), mirror.FileTree(r.tree.Snapshot()))
}

func (r *Root) mirrorPath(name string) string {
	return filepath.Join(r.path, name)
}

// rel converts path to a root-relative form for mirror records. Paths
// already relative (or outside the root) are kept as given.
func (r *Root) rel(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	relPath, err := filepath.Rel(r.path, path)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return path
	}
	return relPath
}

// mirrorError converts a mirror corruption into the storage taxonomy;
// other errors pass through.
func mirrorError(err error) error {
	var corrupt *mirror.CorruptError
	if errors.As(err, &corrupt) {
		return &StorageError{
			Code:    ErrMirrorCorrupt,
			Message: fmt.Sprintf("mirror failed to parse: %v", corrupt.Err),
			Path:    corrupt.Path,
		}
	}
	return err
}

// setupError converts allocator exhaustion into the storage taxonomy;
// other errors pass through.
func setupError(err error) error {
	if errors.Is(err, naming.ErrNamespaceExhausted) {
		return &StorageError{
			Code:    ErrNamespaceExhausted,
			Message: err.Error(),
		}
	}
	return err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
