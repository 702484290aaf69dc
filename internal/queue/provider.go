// Package queue publishes document-ingested notifications so the external
// embedding worker knows when a document's chunks are ready to vectorize.
package queue

import (
	"context"
	"sync"
)

// Provider publishes ingestion notifications.
type Provider interface {
	// Publish announces that all chunks for documentID have been stored.
	Publish(ctx context.Context, documentID string) error

	// Close releases any underlying client resources.
	Close() error
}

// NoOpProvider drops notifications. Used when no embedding worker is wired.
type NoOpProvider struct{}

// Publish does nothing.
func (n *NoOpProvider) Publish(context.Context, string) error { return nil }

// Close does nothing.
func (n *NoOpProvider) Close() error { return nil }

// MemoryProvider records published IDs in memory for tests and local runs.
type MemoryProvider struct {
	mu  sync.Mutex
	ids []string
}

// NewMemoryProvider constructs an empty in-memory publisher.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

// Publish records documentID.
func (m *MemoryProvider) Publish(_ context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, documentID)
	return nil
}

// Published returns a copy of the recorded IDs in publish order.
func (m *MemoryProvider) Published() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out
}

// Close does nothing.
func (m *MemoryProvider) Close() error { return nil }
