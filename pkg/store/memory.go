package store

import (
	"context"
	"sync"

	"wikitextifier/pkg/model"
)

// MemoryStore is an in-memory LabelStore, used in tests and available as
// a cache backend when no database path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[model.LabelKey]model.LabelEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[model.LabelKey]model.LabelEntry)}
}

func (m *MemoryStore) GetLabel(_ context.Context, key model.LabelKey) (model.LabelEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok
}

func (m *MemoryStore) GetLabelsBatch(_ context.Context, keys []model.LabelKey) (map[model.LabelKey]model.LabelEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := make(map[model.LabelKey]model.LabelEntry)
	for _, k := range keys {
		if e, ok := m.entries[k]; ok {
			results[k] = e
		}
	}
	return results, nil
}

func (m *MemoryStore) PutLabel(_ context.Context, key model.LabelKey, entry model.LabelEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
	return nil
}

func (m *MemoryStore) PutLabelsBatch(_ context.Context, entries map[model.LabelKey]model.LabelEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range entries {
		m.entries[k] = e
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
