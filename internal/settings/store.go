// Package settings persists user settings as one JSON object that survives
// restarts.
//
// Every mutation reads the full mapping from Storage, applies one change and
// writes the full mapping back. Store serializes its own operations; two
// callers doing read-then-write across separate calls race last-write-wins.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"

	"subtitle-merger/internal/domain"
)

// StorageKey is the single Storage key holding the serialized mapping.
const StorageKey = "settings"

const emptyMapping = "{}"

// Store is the key-value settings layer.
type Store struct {
	mu      sync.Mutex
	storage Storage
}

// New creates a Store over storage.
func New(storage Storage) *Store {
	return &Store{storage: storage}
}

// NewFileStore creates a Store persisted under dir.
func NewFileStore(dir string) *Store {
	return New(NewFileStorage(dir))
}

// Has reports whether key is present with a non-null value.
func (s *Store) Has(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.load()
	if err != nil {
		return false, err
	}
	value, ok := mapping[key]
	return ok && value != nil, nil
}

// Get returns the stored value for key and whether the key is present.
func (s *Store) Get(key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.load()
	if err != nil {
		return nil, false, err
	}
	value, ok := mapping[key]
	return value, ok, nil
}

// Set merges {key: value} into the mapping and persists it.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.load()
	if err != nil {
		return err
	}
	mapping[key] = value
	return s.save(mapping)
}

// Remove deletes key if present and persists the mapping.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.load()
	if err != nil {
		return err
	}
	delete(mapping, key)
	return s.save(mapping)
}

// Snapshot returns a copy of the full mapping.
func (s *Store) Snapshot() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.load()
	if err != nil {
		return nil, err
	}
	return maps.Clone(mapping), nil
}

// Reset replaces whatever is stored, corrupted or not, with an empty mapping.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(StorageKey, emptyMapping); err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	return nil
}

// Mode reads isRemoveSubtitles as a Mode. Absent or non-bool means merge.
func (s *Store) Mode() (domain.Mode, error) {
	remove, err := s.boolValue(domain.SettingRemoveSubtitles)
	if err != nil {
		return "", err
	}
	if remove {
		return domain.ModeRemove, nil
	}
	return domain.ModeMerge, nil
}

// SetMode persists mode as isRemoveSubtitles.
func (s *Store) SetMode(mode domain.Mode) error {
	switch mode {
	case domain.ModeMerge, domain.ModeRemove:
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}
	return s.Set(domain.SettingRemoveSubtitles, mode == domain.ModeRemove)
}

// SameAsSource reads isSameAsSource, false when absent.
func (s *Store) SameAsSource() (bool, error) {
	return s.boolValue(domain.SettingSameAsSource)
}

// SetSameAsSource persists isSameAsSource.
func (s *Store) SetSameAsSource(same bool) error {
	return s.Set(domain.SettingSameAsSource, same)
}

// Bool reads a boolean option, false when absent or not a bool.
func (s *Store) Bool(key string) (bool, error) {
	return s.boolValue(key)
}

// PreferredLanguage returns the preferred subtitle language, "" when unset.
func (s *Store) PreferredLanguage() (string, error) {
	value, _, err := s.Get(domain.SettingPreferredLanguage)
	if err != nil {
		return "", err
	}
	lang, _ := value.(string)
	return lang, nil
}

// SetPreferredLanguage persists lang, or removes the key when lang is empty.
func (s *Store) SetPreferredLanguage(lang string) error {
	if lang == "" {
		return s.Remove(domain.SettingPreferredLanguage)
	}
	if !domain.IsSupportedLanguage(lang) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return s.Set(domain.SettingPreferredLanguage, lang)
}

func (s *Store) boolValue(key string) (bool, error) {
	value, _, err := s.Get(key)
	if err != nil {
		return false, err
	}
	b, _ := value.(bool)
	return b, nil
}

// load returns the stored mapping, persisting an empty one on first access.
func (s *Store) load() (map[string]any, error) {
	raw, ok, err := s.storage.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if !ok {
		if err := s.storage.Set(StorageKey, emptyMapping); err != nil {
			return nil, fmt.Errorf("initialize settings: %w", err)
		}
		raw = emptyMapping
	}

	var mapping map[string]any
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		return nil, &CorruptionError{Raw: raw, Err: err}
	}
	if mapping == nil {
		return nil, &CorruptionError{Raw: raw, Err: errors.New("stored value is not an object")}
	}
	return mapping, nil
}

func (s *Store) save(mapping map[string]any) error {
	data, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.storage.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
