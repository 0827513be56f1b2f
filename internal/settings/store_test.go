package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subtitle-merger/internal/domain"
)

// failingStorage returns err from every call.
type failingStorage struct {
	err error
}

func (s *failingStorage) Get(string) (string, bool, error) { return "", false, s.err }
func (s *failingStorage) Set(string, string) error         { return s.err }

func rawSettings(t *testing.T, storage *MemoryStorage) string {
	t.Helper()
	raw, ok, err := storage.Get(StorageKey)
	require.NoError(t, err)
	require.True(t, ok, "settings key should be persisted")
	return raw
}

func TestStoreInitializesEmptyObject(t *testing.T) {
	storage := NewMemoryStorage()
	store := New(storage)

	has, err := store.Has("anything")
	require.NoError(t, err)
	assert.False(t, has)
	assert.Equal(t, "{}", rawSettings(t, storage))
}

func TestStoreHasTracksSetAndRemove(t *testing.T) {
	store := New(NewMemoryStorage())

	require.NoError(t, store.Set("isSameAsSource", false))
	has, err := store.Has("isSameAsSource")
	require.NoError(t, err)
	assert.True(t, has, "false is a non-null value")

	require.NoError(t, store.Remove("isSameAsSource"))
	has, err = store.Has("isSameAsSource")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStoreHasIsFalseForNull(t *testing.T) {
	store := New(NewMemoryStorage())
	require.NoError(t, store.Set("k", nil))

	has, err := store.Has("k")
	require.NoError(t, err)
	assert.False(t, has)

	value, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, value)
}

func TestStoreSetPreservesUnrelatedKeys(t *testing.T) {
	storage := NewMemoryStorage()
	store := New(storage)

	require.NoError(t, store.Set("a", 1))
	require.NoError(t, store.Set("b", 2))

	a, ok, err := store.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 1, a)

	b, ok, err := store.Get("b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 2, b)

	assert.JSONEq(t, `{"a":1,"b":2}`, rawSettings(t, storage))
}

func TestStoreSetLastWriteWins(t *testing.T) {
	store := New(NewMemoryStorage())
	require.NoError(t, store.Set("lang", "English"))
	require.NoError(t, store.Set("lang", "French"))

	value, _, err := store.Get("lang")
	require.NoError(t, err)
	assert.Equal(t, "French", value)
}

func TestStoreGetAbsentKey(t *testing.T) {
	store := New(NewMemoryStorage())

	value, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestStoreRemoveAbsentKeyIsNoop(t *testing.T) {
	storage := NewMemoryStorage()
	store := New(storage)
	require.NoError(t, store.Set("keep", true))

	require.NoError(t, store.Remove("missing"))
	assert.JSONEq(t, `{"keep":true}`, rawSettings(t, storage))
}

func TestStoreSetRejectsUnencodableValue(t *testing.T) {
	storage := NewMemoryStorage()
	store := New(storage)
	require.NoError(t, store.Set("keep", "yes"))

	err := store.Set("bad", make(chan int))
	require.Error(t, err)
	assert.JSONEq(t, `{"keep":"yes"}`, rawSettings(t, storage))
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	store := New(NewMemoryStorage())
	require.NoError(t, store.Set("a", "x"))

	snap, err := store.Snapshot()
	require.NoError(t, err)
	snap["a"] = "mutated"

	value, _, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "x", value)
}

func TestStoreCorruptionIsReported(t *testing.T) {
	for _, raw := range []string{"{not-json", "null", "[1,2]", `"text"`} {
		t.Run(raw, func(t *testing.T) {
			storage := NewMemoryStorage()
			require.NoError(t, storage.Set(StorageKey, raw))
			store := New(storage)

			_, _, err := store.Get("a")
			require.ErrorIs(t, err, ErrCorrupt)

			var corrupt *CorruptionError
			require.ErrorAs(t, err, &corrupt)
			assert.Equal(t, raw, corrupt.Raw)

			require.ErrorIs(t, store.Set("a", 1), ErrCorrupt)
			assert.Equal(t, raw, rawSettings(t, storage), "corrupted data must not be overwritten by Set")
		})
	}
}

func TestStoreResetRecoversFromCorruption(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(StorageKey, "{broken"))
	store := New(storage)

	require.NoError(t, store.Reset())
	snap, err := store.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestStoreStorageErrorsAreWrapped(t *testing.T) {
	boom := errors.New("disk gone")
	store := New(&failingStorage{err: boom})

	_, err := store.Has("a")
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, store.Reset(), boom)
}

func TestStoreModeAdapter(t *testing.T) {
	store := New(NewMemoryStorage())

	mode, err := store.Mode()
	require.NoError(t, err)
	assert.Equal(t, domain.ModeMerge, mode, "absent key defaults to merge")

	require.NoError(t, store.SetMode(domain.ModeRemove))
	mode, err = store.Mode()
	require.NoError(t, err)
	assert.Equal(t, domain.ModeRemove, mode)

	raw, _, err := store.Get(domain.SettingRemoveSubtitles)
	require.NoError(t, err)
	assert.Equal(t, true, raw)

	require.NoError(t, store.SetMode(domain.ModeRemove), "setting the same mode twice is fine")
	require.NoError(t, store.SetMode(domain.ModeMerge))
	mode, err = store.Mode()
	require.NoError(t, err)
	assert.Equal(t, domain.ModeMerge, mode)

	require.ErrorIs(t, store.SetMode("split"), domain.ErrInvalidMode)
}

func TestStoreSameAsSource(t *testing.T) {
	store := New(NewMemoryStorage())

	same, err := store.SameAsSource()
	require.NoError(t, err)
	assert.False(t, same)

	require.NoError(t, store.SetSameAsSource(true))
	same, err = store.SameAsSource()
	require.NoError(t, err)
	assert.True(t, same)
}

func TestStorePreferredLanguage(t *testing.T) {
	store := New(NewMemoryStorage())

	require.NoError(t, store.SetPreferredLanguage("Japanese"))
	lang, err := store.PreferredLanguage()
	require.NoError(t, err)
	assert.Equal(t, "Japanese", lang)

	require.ErrorIs(t, store.SetPreferredLanguage("Klingon"), ErrUnsupportedLanguage)

	require.NoError(t, store.SetPreferredLanguage(""))
	has, err := store.Has(domain.SettingPreferredLanguage)
	require.NoError(t, err)
	assert.False(t, has)
}
