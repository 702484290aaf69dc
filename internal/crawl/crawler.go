package crawl

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/coraldesk/siteingest/internal/safeurl"
)

// Crawl budget defaults and clamps.
const (
	DefaultMaxPages = 100
	MinMaxPages     = 10
	MaxMaxPages     = 1000
	DefaultMaxDepth = 3
	MinMaxDepth     = 1
	MaxMaxDepth     = 10
)

// SitemapSource yields best-effort BFS seed URLs for an origin.
type SitemapSource interface {
	Discover(ctx context.Context, seed *url.URL) []string
}

// Crawler discovers pages on a single origin breadth-first, seeded by the
// origin's sitemap when one exists.
type Crawler struct {
	fetcher Fetcher
	sitemap SitemapSource
	logger  *zap.Logger
}

// NewCrawler wires a Crawler from its collaborators.
func NewCrawler(fetcher Fetcher, sitemap SitemapSource, logger *zap.Logger) *Crawler {
	return &Crawler{
		fetcher: fetcher,
		sitemap: sitemap,
		logger:  logger,
	}
}

// DiscoverPages explores same-origin links from startURL under page and depth
// budgets. Individual fetch failures are skipped; the crawl never aborts on a
// dead page. On context deadline it returns whatever was discovered so far.
// Zero budgets select the defaults; out-of-range values are clamped.
func (c *Crawler) DiscoverPages(ctx context.Context, startURL string, maxPages, maxDepth int) CrawlResult {
	if err := safeurl.Validate(startURL); err != nil {
		return CrawlResult{DiscoveryMethod: DiscoveryMethodCrawl, Error: err.Error()}
	}
	seed, err := url.Parse(startURL)
	if err != nil {
		return CrawlResult{DiscoveryMethod: DiscoveryMethodCrawl, Error: err.Error()}
	}
	maxPages = clamp(maxPages, DefaultMaxPages, MinMaxPages, MaxMaxPages)
	maxDepth = clamp(maxDepth, DefaultMaxDepth, MinMaxDepth, MaxMaxDepth)

	state := newCrawlState(startURL)
	method := DiscoveryMethodCrawl

	// Sitemap URLs seed the queue before the homepage is fetched, so
	// sitemap-derived pages come first in the listing and the crawl merely
	// enriches their placeholders.
	for _, loc := range c.sitemap.Discover(ctx, seed) {
		method = DiscoveryMethodSitemap
		sitemapSeeds.Inc()
		state.addPlaceholder(loc)
		state.enqueue(loc, 0)
	}

	for len(state.discovered) < maxPages {
		entry, ok := state.dequeue()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			c.logger.Info("crawl deadline reached; returning partial result",
				zap.String("seed", startURL),
				zap.Int("discovered", len(state.discovered)))
			break
		}
		if _, done := state.visited[entry.url]; done {
			continue
		}
		if entry.depth > maxDepth {
			continue
		}
		state.visited[entry.url] = struct{}{}

		page, err := c.fetcher.Fetch(ctx, entry.url)
		if err != nil || page.StatusCode < 200 || page.StatusCode >= 300 {
			fetchErrors.Inc()
			c.logger.Debug("skipping unreachable page",
				zap.String("url", entry.url),
				zap.Int("status", page.StatusCode),
				zap.Error(err))
			continue
		}
		pagesFetched.Inc()

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
		if err != nil {
			c.logger.Debug("skipping unparseable page",
				zap.String("url", entry.url), zap.Error(err))
			continue
		}
		state.upsert(pageMetadata(entry.url, doc, len(page.Body)))

		base := seed
		if parsed, err := url.Parse(page.FinalURL); err == nil {
			base = parsed
		}
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			if len(state.discovered) >= maxPages {
				return
			}
			href, _ := sel.Attr("href")
			normalized, ok := normalizeCandidate(seed, base, href)
			if !ok {
				return
			}
			if !state.enqueue(normalized, entry.depth+1) {
				return
			}
			state.addPlaceholder(normalized)
		})
	}

	return CrawlResult{
		Pages:           state.pages(),
		TotalFound:      len(state.discovered),
		DiscoveryMethod: method,
	}
}

// pageMetadata extracts the listing-level metadata used by the discovery UI.
func pageMetadata(pageURL string, doc *goquery.Document, bodySize int) PageMetadata {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	if strings.TrimSpace(description) == "" {
		description, _ = doc.Find(`meta[property="og:description"]`).First().Attr("content")
	}
	return PageMetadata{
		URL:                pageURL,
		Title:              title,
		Description:        strings.TrimSpace(description),
		EstimatedSizeBytes: bodySize,
	}
}

func clamp(value, fallback, lower, upper int) int {
	if value == 0 {
		value = fallback
	}
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}
