package storage

import (
	"context"
	"slices"
	"sync"
)

// MemoryBackend keeps records in a map. It is safe for concurrent use.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string]Record)}
}

// NewMemory returns a Store over a fresh MemoryBackend.
func NewMemory(opts ...Option) *Store {
	return New(NewMemoryBackend(), opts...)
}

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.Data = slices.Clone(rec.Data)
	return rec, nil
}

// Put implements Backend.
func (m *MemoryBackend) Put(_ context.Context, rec Record) error {
	rec.Data = slices.Clone(rec.Data)
	m.mu.Lock()
	m.records[rec.ID.Serialization()] = rec
	m.mu.Unlock()
	return nil
}

// IDs implements Backend.
func (m *MemoryBackend) IDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	return ids, nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error { return nil }
