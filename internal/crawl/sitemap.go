package crawl

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"go.uber.org/zap"
)

// SitemapDiscoverer extracts BFS seed URLs from an origin's /sitemap.xml.
// The whole stage is best-effort: any failure yields an empty list, never an
// error. Sitemap-index files referencing child sitemaps are not followed.
type SitemapDiscoverer struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// NewSitemapDiscoverer builds a discoverer with the crawl user agent.
func NewSitemapDiscoverer(userAgent string, logger *zap.Logger) *SitemapDiscoverer {
	return &SitemapDiscoverer{
		client:    &http.Client{Timeout: 5 * time.Second},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Discover fetches {seed origin}/sitemap.xml and returns every <loc> entry
// that passes the same-origin and extension filter.
func (s *SitemapDiscoverer) Discover(ctx context.Context, seed *url.URL) []string {
	sitemapURL := url.URL{Scheme: seed.Scheme, Host: seed.Host, Path: "/sitemap.xml"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL.String(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", s.userAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("sitemap fetch failed",
			zap.String("host", seed.Host), zap.Error(err))
		return nil
	}
	defer closeQuietly(resp.Body, s.logger)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}
	doc, err := xmlquery.Parse(io.LimitReader(resp.Body, sitemapMaxBytes))
	if err != nil {
		s.logger.Debug("sitemap parse failed",
			zap.String("host", seed.Host), zap.Error(err))
		return nil
	}

	var urls []string
	for _, node := range xmlquery.Find(doc, "//loc") {
		loc := strings.TrimSpace(node.InnerText())
		if loc == "" {
			continue
		}
		normalized, ok := normalizeCandidate(seed, seed, loc)
		if !ok {
			continue
		}
		urls = append(urls, normalized)
	}
	return urls
}
