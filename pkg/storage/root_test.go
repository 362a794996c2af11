package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvetrano/trainvault/pkg/storage/mirror"
)

func setupRoot(t *testing.T, path string) *Root {
	t.Helper()
	root, err := Setup(context.Background(), path, Options{})
	require.NoError(t, err)
	return root
}

func TestSetup_CreatesLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")
	root := setupRoot(t, path)

	assert.Equal(t, StateReady, root.State())

	for _, entry := range []string{
		MainYAML, SharedStorageYAML, FileTreeYAML, TinyDBJSON,
		OldYamlsFolder, FilesFolder, GraphsFolder,
		TestShowcaseImagesFolder, BackupsWeightsFolder,
	} {
		_, err := os.Stat(filepath.Join(root.Path(), entry))
		assert.NoError(t, err, "missing %s", entry)
	}

	data, err := os.ReadFile(filepath.Join(root.Path(), TinyDBJSON))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestSetup_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")

	first := setupRoot(t, path)
	var firstShared mirror.Shared
	require.NoError(t, mirror.Load(filepath.Join(first.Path(), SharedStorageYAML), &firstShared))
	require.NotEmpty(t, firstShared.RunID)

	second := setupRoot(t, path)
	assert.Equal(t, first.Path(), second.Path())

	// No mirror reset: the run identity from the first setup survives.
	var secondShared mirror.Shared
	require.NoError(t, mirror.Load(filepath.Join(second.Path(), SharedStorageYAML), &secondShared))
	assert.Equal(t, firstShared.RunID, secondShared.RunID)
	assert.True(t, firstShared.CreatedAt.Equal(secondShared.CreatedAt))

	// No duplicate subfolders inside files/.
	entries, err := os.ReadDir(second.FilesDir())
	require.NoError(t, err)
	assert.Len(t, entries, 2) // graphs, test_showcase_images
}

func TestSetup_PartialLayoutIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")
	require.NoError(t, os.MkdirAll(filepath.Join(path, FilesFolder), 0755))

	_, err := Setup(context.Background(), path, Options{})
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrSetupConflict), "got %v", err)
}

func TestSetup_CorruptMirrorIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")
	setupRoot(t, path)

	require.NoError(t, os.WriteFile(
		filepath.Join(path, MainYAML), []byte("{{{ not yaml"), 0644))

	_, err := Setup(context.Background(), path, Options{})
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrMirrorCorrupt), "got %v", err)
}

func TestSetup_ContainerMode(t *testing.T) {
	container := filepath.Join(t.TempDir(), "runs")

	first, err := Setup(context.Background(), container, Options{
		ContainerMode: true,
		SemanticID:    "unet_large",
	})
	require.NoError(t, err)
	assert.Equal(t, "999_unet_large", filepath.Base(first.Path()))

	second, err := Setup(context.Background(), container, Options{
		ContainerMode: true,
		SemanticID:    "unet_large",
	})
	require.NoError(t, err)
	assert.Equal(t, "998_unet_large", filepath.Base(second.Path()))
}

func TestSave_RequiresLoad(t *testing.T) {
	root := setupRoot(t, filepath.Join(t.TempDir(), "store"))

	err := root.Save(context.Background())
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrInvalidState), "got %v", err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store")

	root := setupRoot(t, path)
	require.NoError(t, root.Load(ctx))

	root.TrainingLog().AddEpoch(1, 2.0, 0.5)
	root.TrainingLog().AddEpoch(2, 1.7, 0.6)
	root.ModelWrapper().Architecture = "segnet_small"
	root.ModelWrapper().AddMetadata("dataset", "CIFAR-10")

	require.NoError(t, root.Save(ctx))
	assert.Equal(t, StateReady, root.State())

	// The save went into the newest checkpoint folder.
	var main mirror.Main
	require.NoError(t, mirror.Load(filepath.Join(path, MainYAML), &main))
	assert.Equal(t, filepath.Join(FilesFolder, "999", "training_log.yaml"), main.TrainingLogLatestPath)

	savedLog, err := os.ReadFile(filepath.Join(path, main.TrainingLogLatestPath))
	require.NoError(t, err)
	savedModel, err := os.ReadFile(filepath.Join(path, main.ModelWrapperLatestPath))
	require.NoError(t, err)

	// A fresh setup and load on the same root reconstructs artifacts
	// whose serialized forms are byte-identical to what was written.
	reopened := setupRoot(t, path)
	require.NoError(t, reopened.Load(ctx))
	assert.Equal(t, 2, reopened.TrainingLog().Epochs())
	assert.Equal(t, "segnet_small", reopened.ModelWrapper().Architecture)

	scratch := t.TempDir()
	reLog := filepath.Join(scratch, "training_log.yaml")
	reModel := filepath.Join(scratch, "model_wrapper.yaml")
	require.NoError(t, reopened.TrainingLog().Serialize(reLog))
	require.NoError(t, reopened.ModelWrapper().Serialize(reModel))

	reLogData, err := os.ReadFile(reLog)
	require.NoError(t, err)
	reModelData, err := os.ReadFile(reModel)
	require.NoError(t, err)
	assert.Equal(t, string(savedLog), string(reLogData))
	assert.Equal(t, string(savedModel), string(reModelData))
}

func TestSave_CheckpointsDescend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store")
	root := setupRoot(t, path)

	var checkpoints []string
	for i := 0; i < 3; i++ {
		require.NoError(t, root.Load(ctx))
		root.TrainingLog().AddEpoch(i, 1.0, 0.5)
		require.NoError(t, root.Save(ctx))

		var shared mirror.Shared
		require.NoError(t, mirror.Load(filepath.Join(path, SharedStorageYAML), &shared))
		checkpoints = append(checkpoints, filepath.Base(shared.LastCheckpoint))
	}

	assert.Equal(t, []string{"999", "998", "997"}, checkpoints)
}

func TestSave_BacksUpWeightsOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store")
	root := setupRoot(t, path)
	require.NoError(t, root.Load(ctx))

	weightsRel := filepath.Join(FilesFolder, "weights_epoch_1.bin")
	require.NoError(t, os.WriteFile(
		filepath.Join(path, weightsRel), []byte("weights"), 0644))
	root.ModelWrapper().UpdateWeights(weightsRel)

	require.NoError(t, root.Save(ctx))

	backupPath := filepath.Join(path, BackupsWeightsFolder, "weights_epoch_1.bin")
	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, "weights", string(data))

	// A second save with the same weights name copies nothing new.
	require.NoError(t, os.WriteFile(
		filepath.Join(path, weightsRel), []byte("changed"), 0644))
	require.NoError(t, root.Load(ctx))
	require.NoError(t, root.Save(ctx))

	data, err = os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, "weights", string(data), "name-only dedup must not re-copy")

	entries, err := os.ReadDir(filepath.Join(path, BackupsWeightsFolder))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSave_NeverTouchesLegacyDB(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store")
	root := setupRoot(t, path)

	for i := 0; i < 2; i++ {
		require.NoError(t, root.Load(ctx))
		root.TrainingLog().AddEpoch(i, 1.0, 0.5)
		require.NoError(t, root.Save(ctx))
	}

	data, err := os.ReadFile(filepath.Join(path, TinyDBJSON))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestFileTreeManage_RemoveKeepsHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store")
	root := setupRoot(t, path)
	require.NoError(t, root.Load(ctx))
	require.NoError(t, root.Save(ctx))

	var main mirror.Main
	require.NoError(t, mirror.Load(filepath.Join(path, MainYAML), &main))
	retired := main.TrainingLogLatestPath

	require.NoError(t, root.FileTreeManage(retired, true))
	require.NoError(t, root.Load(ctx))
	require.NoError(t, root.Save(ctx))

	tree := mirror.FileTree{}
	require.NoError(t, mirror.Load(filepath.Join(path, FileTreeYAML), &tree))

	// The second save wrote a fresh checkpoint folder; the retired path
	// stays in the tree, flagged removed.
	entry, ok := tree[retired]
	require.True(t, ok, "retired path missing from file tree")
	assert.True(t, entry.Removed)
}

func TestLoad_MissingLatestPathsStartFresh(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store")
	root := setupRoot(t, path)
	require.NoError(t, root.Load(ctx))

	assert.Equal(t, 0, root.TrainingLog().Epochs())
	assert.Equal(t, 0, root.ModelWrapper().TrainingEpochs)
}
