package storage

import (
	"context"
	"sync"
)

// MemoryProvider keeps snapshots in process memory. Intended for tests and
// local development only.
type MemoryProvider struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryProvider constructs an empty in-memory archive.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{objects: make(map[string][]byte)}
}

// Save stores a copy of data under objectName.
func (m *MemoryProvider) Save(_ context.Context, objectName string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectName] = append([]byte{}, data...)
	return nil
}

// Get returns the stored object and whether it exists.
func (m *MemoryProvider) Get(objectName string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectName]
	return data, ok
}

// Len reports how many objects are stored.
func (m *MemoryProvider) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Close does nothing.
func (m *MemoryProvider) Close() error { return nil }
