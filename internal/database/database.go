// Package database persists document chunks into the knowledge base that
// backs similarity search. The Provider interface keeps the pipeline
// decoupled from the concrete backend.
package database

import "context"

// ChunkRecord is one persisted chunk of an ingested document.
type ChunkRecord struct {
	ID         string         `db:"id"`
	DocumentID string         `db:"document_id"`
	SourceURL  string         `db:"source_url"`
	Title      string         `db:"title"`
	ChunkIndex int            `db:"chunk_index"`
	ChunkTotal int            `db:"chunk_total"`
	Text       string         `db:"chunk_text"`
	Metadata   map[string]any `db:"metadata"`
}

// Provider is the knowledge-base write interface.
type Provider interface {
	// SaveChunk persists one chunk record.
	SaveChunk(ctx context.Context, rec ChunkRecord) error

	// Close releases the underlying connection resources.
	Close()
}

// NoOpProvider discards chunks. Useful for dry runs and local development
// without a database.
type NoOpProvider struct{}

// SaveChunk does nothing.
func (n *NoOpProvider) SaveChunk(context.Context, ChunkRecord) error { return nil }

// Close does nothing.
func (n *NoOpProvider) Close() {}
