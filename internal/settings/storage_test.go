package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFileStorageMissingKey checks first-run behavior.
func TestFileStorageMissingKey(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "missing"))

	_, ok, err := storage.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestFileStorageRoundTrip checks directories are created and values persist.
func TestFileStorageRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	storage := NewFileStorage(dir)

	require.NoError(t, storage.Set(StorageKey, `{"isSameAsSource":true}`))

	got, ok, err := storage.Get(StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"isSameAsSource":true}`, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "settings.json", entries[0].Name())
}

// TestFileStoreSurvivesRestart checks a new Store sees previous writes.
func TestFileStoreSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewFileStore(dir).Set("isRemoveSubtitles", true))

	value, ok, err := NewFileStore(dir).Get("isRemoveSubtitles")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, true, value)
}

// TestFileStoreInvalidJSON checks parse error handling.
func TestFileStoreInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{not-json"), 0o644))

	_, err := NewFileStore(dir).Snapshot()
	require.ErrorIs(t, err, ErrCorrupt)
}
