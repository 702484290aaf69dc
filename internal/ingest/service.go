// Package ingest orchestrates batch ingestion of selected pages: extract,
// chunk, persist, notify. One bad page never fails the batch; per-URL errors
// are accumulated and reported alongside the successes.
package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/coraldesk/siteingest/internal/chunk"
	"github.com/coraldesk/siteingest/internal/database"
	"github.com/coraldesk/siteingest/internal/extract"
	"github.com/coraldesk/siteingest/internal/queue"
)

var chunksStored = promauto.NewCounter(prometheus.CounterOpts{
	Name: "siteingest_chunks_stored_total",
	Help: "Document chunks persisted to the knowledge base.",
})

// ContentExtractor converts one page into a text document.
type ContentExtractor interface {
	Extract(ctx context.Context, pageURL string) (extract.WebsiteParseResult, error)
}

// PageError pairs a failed URL with the reason.
type PageError struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// BatchResult summarizes one ingestion run.
type BatchResult struct {
	JobID        string      `json:"job_id"`
	Succeeded    []string    `json:"succeeded"`
	Failed       []PageError `json:"failed"`
	ChunksStored int         `json:"chunks_stored"`
}

// Summary renders the user-facing outcome line.
func (r BatchResult) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed", len(r.Succeeded), len(r.Failed))
}

// Config holds chunk sizing knobs. Zero values select the chunker defaults.
type Config struct {
	MinChunkSize int
	MaxChunkSize int
	OverlapSize  int
}

// Service runs the ingestion pipeline for explicitly selected pages.
type Service struct {
	extractor ContentExtractor
	store     database.Provider
	notifier  queue.Provider
	cfg       Config
	logger    *zap.Logger
}

// NewService wires a Service. notifier may be nil when no embedding worker is
// attached.
func NewService(extractor ContentExtractor, store database.Provider, notifier queue.Provider, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		extractor: extractor,
		store:     store,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}
}

// IngestPages processes each URL independently and reports per-URL outcomes.
func (s *Service) IngestPages(ctx context.Context, urls []string) BatchResult {
	result := BatchResult{JobID: uuid.NewString()}
	for _, pageURL := range urls {
		stored, err := s.ingestPage(ctx, result.JobID, pageURL)
		if err != nil {
			s.logger.Warn("page ingestion failed",
				zap.String("job_id", result.JobID),
				zap.String("url", pageURL),
				zap.Error(err))
			result.Failed = append(result.Failed, PageError{URL: pageURL, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, pageURL)
		result.ChunksStored += stored
	}
	s.logger.Info("ingestion batch finished",
		zap.String("job_id", result.JobID),
		zap.String("outcome", result.Summary()),
		zap.Int("chunks_stored", result.ChunksStored))
	return result
}

func (s *Service) ingestPage(ctx context.Context, jobID, pageURL string) (int, error) {
	parsed, err := s.extractor.Extract(ctx, pageURL)
	if err != nil {
		return 0, err
	}
	size, err := chunk.RecommendSize(parsed.Text, s.cfg.MinChunkSize, s.cfg.MaxChunkSize)
	if err != nil {
		return 0, fmt.Errorf("recommend chunk size: %w", err)
	}
	chunks, err := chunk.Split(parsed.Text, size, s.cfg.OverlapSize)
	if err != nil {
		return 0, fmt.Errorf("chunk document: %w", err)
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("page produced no content")
	}

	documentID := uuid.NewString()
	for _, c := range chunks {
		rec := database.ChunkRecord{
			ID:         uuid.NewString(),
			DocumentID: documentID,
			SourceURL:  pageURL,
			Title:      parsed.Metadata.Title,
			ChunkIndex: c.Index,
			ChunkTotal: c.Total,
			Text:       c.Text,
			Metadata: map[string]any{
				"job_id":        jobID,
				"domain":        parsed.Metadata.Domain,
				"description":   parsed.Metadata.Description,
				"original_size": c.OriginalSize,
			},
		}
		if err := s.store.SaveChunk(ctx, rec); err != nil {
			return 0, fmt.Errorf("store chunk %d/%d: %w", c.Index, c.Total, err)
		}
		chunksStored.Inc()
	}

	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, documentID); err != nil {
			// Chunks are already persisted; a lost notification is
			// recoverable by re-publishing, so it never fails the page.
			s.logger.Warn("failed to publish ingestion notification",
				zap.String("document_id", documentID), zap.Error(err))
		}
	}
	return len(chunks), nil
}
