// Package api exposes the HTTP interface for the ingestion service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/coraldesk/siteingest/internal/chunk"
	"github.com/coraldesk/siteingest/internal/classify"
	"github.com/coraldesk/siteingest/internal/config"
	"github.com/coraldesk/siteingest/internal/crawl"
	"github.com/coraldesk/siteingest/internal/extract"
	"github.com/coraldesk/siteingest/internal/ingest"
	"github.com/coraldesk/siteingest/internal/safeurl"
)

// PageDiscoverer runs same-origin page discovery.
type PageDiscoverer interface {
	DiscoverPages(ctx context.Context, startURL string, maxPages, maxDepth int) crawl.CrawlResult
}

// RobotsPolicy reports whether an origin permits crawling at all.
type RobotsPolicy interface {
	Allowed(ctx context.Context, origin string) bool
}

// Ingestor runs the batch ingestion pipeline.
type Ingestor interface {
	IngestPages(ctx context.Context, urls []string) ingest.BatchResult
}

// Server wires HTTP handlers to the discovery, extraction, and ingestion
// services.
type Server struct {
	router     chi.Router
	discoverer PageDiscoverer
	robots     RobotsPolicy
	extractor  ingest.ContentExtractor
	ingestor   Ingestor
	cfg        config.Config
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	discoverer PageDiscoverer,
	robots RobotsPolicy,
	extractor ingest.ContentExtractor,
	ingestor Ingestor,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	s := &Server{
		discoverer: discoverer,
		robots:     robots,
		extractor:  extractor,
		ingestor:   ingestor,
		cfg:        cfg,
		logger:     logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", s.validateURL)
		r.Post("/robots", s.checkRobots)
		r.Post("/discover", s.discoverPages)
		r.Post("/classify", s.classifyPage)
		r.Post("/extract", s.extractPage)
		r.Post("/chunk", s.chunkText)
		r.Post("/chunk/recommend", s.recommendChunkSize)
		r.Post("/ingest", s.ingestPages)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type urlRequest struct {
	URL string `json:"url"`
}

func (s *Server) validateURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "url required")
		return
	}
	if err := safeurl.Validate(req.URL); err != nil {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"url":   req.URL,
			"valid": false,
			"error": err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"url": req.URL, "valid": true})
}

func (s *Server) checkRobots(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "url required")
		return
	}
	if err := safeurl.Validate(req.URL); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	allowed := s.robots.Allowed(r.Context(), req.URL)
	s.writeJSON(w, http.StatusOK, map[string]any{"url": req.URL, "allowed": allowed})
}

type discoverRequest struct {
	URL      string `json:"url"`
	MaxPages int    `json:"max_pages"`
	MaxDepth int    `json:"max_depth"`
}

func (s *Server) discoverPages(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "url required")
		return
	}
	// Requests that omit budgets fall back to the configured defaults; the
	// crawler still clamps whatever arrives to its hard bounds.
	if req.MaxPages == 0 {
		req.MaxPages = s.cfg.Crawler.MaxPagesDefault
	}
	if req.MaxDepth == 0 {
		req.MaxDepth = s.cfg.Crawler.MaxDepthDefault
	}
	result := s.discoverer.DiscoverPages(r.Context(), req.URL, req.MaxPages, req.MaxDepth)
	if result.Error != "" && result.TotalFound == 0 {
		s.writeError(w, http.StatusBadRequest, result.Error)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) classifyPage(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "url required")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"url":            req.URL,
		"likely_content": classify.IsLikelyContentPage(req.URL),
	})
}

func (s *Server) extractPage(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "url required")
		return
	}
	result, err := s.extractor.Extract(r.Context(), req.URL)
	if err != nil {
		var fetchErr *extract.FetchError
		switch {
		case errors.As(err, &fetchErr):
			s.writeError(w, http.StatusBadGateway, fetchErr.Error())
		case errors.Is(err, safeurl.ErrPrivateNetworkBlocked),
			errors.Is(err, safeurl.ErrUnsupportedProtocol),
			errors.Is(err, safeurl.ErrInvalidURL):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type chunkRequest struct {
	Text         string `json:"text"`
	MaxChunkSize int    `json:"max_chunk_size"`
	OverlapSize  int    `json:"overlap_size"`
}

func (s *Server) chunkText(w http.ResponseWriter, r *http.Request) {
	var req chunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	chunks, err := chunk.Split(req.Text, req.MaxChunkSize, req.OverlapSize)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"chunks": chunks, "total": len(chunks)})
}

type recommendRequest struct {
	Text    string `json:"text"`
	MinSize int    `json:"min_size"`
	MaxSize int    `json:"max_size"`
}

func (s *Server) recommendChunkSize(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	size, err := chunk.RecommendSize(req.Text, req.MinSize, req.MaxSize)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"recommended_size": size})
}

type ingestRequest struct {
	URLs []string `json:"urls"`
}

func (s *Server) ingestPages(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.URLs) == 0 {
		s.writeError(w, http.StatusBadRequest, "urls required")
		return
	}
	result := s.ingestor.IngestPages(r.Context(), req.URLs)
	s.writeJSON(w, http.StatusOK, result)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
