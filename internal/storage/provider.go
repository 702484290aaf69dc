// Package storage defines the blob archive used to keep raw HTML snapshots of
// ingested pages. Snapshots make re-extraction possible without re-crawling;
// the interface decouples the pipeline from any one backend.
package storage

import "context"

// Provider saves raw page snapshots under an object name.
type Provider interface {
	// Save stores data under objectName, overwriting any previous object.
	Save(ctx context.Context, objectName string, data []byte) error

	// Close releases any underlying client resources.
	Close() error
}

// NoOpProvider discards snapshots. Used when archiving is disabled.
type NoOpProvider struct{}

// Save does nothing.
func (n *NoOpProvider) Save(context.Context, string, []byte) error { return nil }

// Close does nothing.
func (n *NoOpProvider) Close() error { return nil }
