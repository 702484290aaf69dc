package crawl

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

const (
	robotsTimeout   = 5 * time.Second
	robotsMaxBytes  = 1 << 20
	sitemapMaxBytes = 4 << 20
)

// RobotsChecker answers whether an origin permits full-site crawling.
// The check is intentionally coarse: only a bare `Disallow: /` under the
// wildcard agent group denies the whole site. Path-level rules are not
// applied during BFS.
type RobotsChecker struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// NewRobotsChecker builds a checker with the crawl user agent.
func NewRobotsChecker(userAgent string, logger *zap.Logger) *RobotsChecker {
	return &RobotsChecker{
		client:    &http.Client{Timeout: robotsTimeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Allowed fetches {origin}/robots.txt and reports whether crawling the site
// is permitted. A missing, unreachable, or unparseable robots.txt defaults
// to allow.
func (r *RobotsChecker) Allowed(ctx context.Context, originOrURL string) bool {
	origin, err := parseOrigin(originOrURL)
	if err != nil {
		return true
	}
	robotsURL := url.URL{Scheme: origin.Scheme, Host: origin.Host, Path: "/robots.txt"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return true
	}
	req.Header.Set("User-Agent", r.userAgent)
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("robots fetch failed; allowing crawl",
			zap.String("host", origin.Host), zap.Error(err))
		return true
	}
	defer closeQuietly(resp.Body, r.logger)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return true
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, robotsMaxBytes))
	if err != nil {
		return true
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return true
	}
	group := data.FindGroup("*")
	if group == nil {
		return true
	}
	return group.Test("/")
}

// parseOrigin accepts a full URL or a bare host.
func parseOrigin(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func closeQuietly(c io.Closer, logger *zap.Logger) {
	if err := c.Close(); err != nil {
		logger.Debug("response body close failed", zap.Error(err))
	}
}
