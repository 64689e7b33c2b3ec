package crud

import (
	"context"
	"strings"
	"sync"

	"crudgrid/pkg/crud/filter"
)

// MemorySettingsStore is an in-memory SettingsStore for tests and
// applications without durable preference storage.
type MemorySettingsStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemorySettingsStore creates an empty in-memory settings store.
func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{records: make(map[string]Record)}
}

func settingsKey(userID, gridName string) string {
	return userID + "\x00" + gridName
}

// Load returns the stored record or nil.
func (s *MemorySettingsStore) Load(ctx context.Context, userID, gridName string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[settingsKey(userID, gridName)]
	if !ok {
		return nil, nil
	}
	rec.DisplayedColumns = append([]string(nil), rec.DisplayedColumns...)
	return &rec, nil
}

// Save upserts the record, last write wins.
func (s *MemorySettingsStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.DisplayedColumns = append([]string(nil), rec.DisplayedColumns...)
	s.records[settingsKey(rec.UserID, rec.GridName)] = rec
	return nil
}

// DeleteForUser removes all of a user's records.
func (s *MemorySettingsStore) DeleteForUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := userID + "\x00"
	for key := range s.records {
		if strings.HasPrefix(key, prefix) {
			delete(s.records, key)
		}
	}
	return nil
}

// MemorySearchStore is an in-memory SearchStore.
type MemorySearchStore struct {
	mu     sync.RWMutex
	values map[string]filter.Values
}

// NewMemorySearchStore creates an empty in-memory search store.
func NewMemorySearchStore() *MemorySearchStore {
	return &MemorySearchStore{values: make(map[string]filter.Values)}
}

// LoadSearch returns the stored values or nil.
func (s *MemorySearchStore) LoadSearch(ctx context.Context, userID, gridName string) (filter.Values, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vals, ok := s.values[settingsKey(userID, gridName)]
	if !ok {
		return nil, nil
	}
	out := make(filter.Values, len(vals))
	for k, v := range vals {
		out[k] = v
	}
	return out, nil
}

// SaveSearch replaces the stored values.
func (s *MemorySearchStore) SaveSearch(ctx context.Context, userID, gridName string, vals filter.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(filter.Values, len(vals))
	for k, v := range vals {
		copied[k] = v
	}
	s.values[settingsKey(userID, gridName)] = copied
	return nil
}

// ClearSearch drops the stored values.
func (s *MemorySearchStore) ClearSearch(ctx context.Context, userID, gridName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, settingsKey(userID, gridName))
	return nil
}
