package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubFetcher serves canned HTML bodies keyed by URL.
type stubFetcher struct {
	pages   map[string]string
	calls   []string
	failAll bool
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) (Page, error) {
	f.calls = append(f.calls, rawURL)
	if f.failAll {
		return Page{}, errors.New("network down")
	}
	body, ok := f.pages[rawURL]
	if !ok {
		return Page{URL: rawURL, StatusCode: http.StatusNotFound}, errors.New("not found")
	}
	return Page{
		URL:        rawURL,
		FinalURL:   rawURL,
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": []string{"text/html"}},
		Body:       []byte(body),
	}, nil
}

// stubSitemap returns a fixed seed list.
type stubSitemap struct {
	urls []string
}

func (s *stubSitemap) Discover(context.Context, *url.URL) []string {
	return s.urls
}

func page(title string, links ...string) string {
	body := ""
	for _, l := range links {
		body += fmt.Sprintf(`<a href=%q>link</a>`, l)
	}
	return fmt.Sprintf(`<html><head><title>%s</title><meta name="description" content="%s page"></head><body>%s</body></html>`, title, title, body)
}

func TestDiscoverPagesSitemapAndCrawl(t *testing.T) {
	t.Parallel()

	const seed = "https://example.com"
	fetcher := &stubFetcher{pages: map[string]string{
		seed: page("Home",
			"https://example.com/features",
			"https://example.com/pricing",
			"https://external.net/elsewhere",
		),
		"https://example.com/about":       page("About"),
		"https://example.com/blog/launch": page("Launch"),
		"https://example.com/contact":     page("Contact"),
		"https://example.com/features":    page("Features"),
		"https://example.com/pricing":     page("Pricing"),
	}}
	sitemap := &stubSitemap{urls: []string{
		"https://example.com/about",
		"https://example.com/blog/launch",
		"https://example.com/contact",
	}}

	crawler := NewCrawler(fetcher, sitemap, zap.NewNop())
	result := crawler.DiscoverPages(context.Background(), seed, 10, 1)

	require.Empty(t, result.Error)
	require.Equal(t, DiscoveryMethodSitemap, result.DiscoveryMethod)
	require.Equal(t, 6, result.TotalFound)
	require.Len(t, result.Pages, 6)

	byURL := map[string]PageMetadata{}
	var order []string
	for _, p := range result.Pages {
		byURL[p.URL] = p
		order = append(order, p.URL)
	}
	// Sitemap entries are seeded before the homepage is fetched.
	require.Equal(t, "https://example.com/about", order[0])
	require.Equal(t, "Home", byURL[seed].Title)
	require.Equal(t, "Home page", byURL[seed].Description)
	require.Equal(t, "Features", byURL["https://example.com/features"].Title)
	require.NotContains(t, byURL, "https://external.net/elsewhere")
}

func TestDiscoverPagesRespectsPageBudget(t *testing.T) {
	t.Parallel()

	const seed = "https://example.com"
	pages := map[string]string{}
	var links []string
	for i := 0; i < 50; i++ {
		link := fmt.Sprintf("https://example.com/p/%d", i)
		links = append(links, link)
		pages[link] = page(fmt.Sprintf("Page %d", i))
	}
	pages[seed] = page("Home", links...)

	crawler := NewCrawler(&stubFetcher{pages: pages}, &stubSitemap{}, zap.NewNop())
	result := crawler.DiscoverPages(context.Background(), seed, 10, 3)

	require.Equal(t, DiscoveryMethodCrawl, result.DiscoveryMethod)
	require.LessOrEqual(t, len(result.Pages), 10)
	require.Equal(t, len(result.Pages), result.TotalFound)
}

func TestDiscoverPagesDepthLimit(t *testing.T) {
	t.Parallel()

	const seed = "https://example.com"
	fetcher := &stubFetcher{pages: map[string]string{
		seed:                        page("Home", "https://example.com/a"),
		"https://example.com/a":     page("A", "https://example.com/a/b"),
		"https://example.com/a/b":   page("B", "https://example.com/a/b/c"),
		"https://example.com/a/b/c": page("C"),
	}}

	crawler := NewCrawler(fetcher, &stubSitemap{}, zap.NewNop())
	result := crawler.DiscoverPages(context.Background(), seed, 100, 1)

	// Depth 2 is enqueued but never fetched.
	require.NotContains(t, fetcher.calls, "https://example.com/a/b")
	require.Contains(t, fetcher.calls, "https://example.com/a")
	require.Empty(t, result.Error)
}

func TestDiscoverPagesAllFetchesFail(t *testing.T) {
	t.Parallel()

	sitemap := &stubSitemap{urls: []string{
		"https://example.com/one",
		"https://example.com/two",
	}}
	crawler := NewCrawler(&stubFetcher{failAll: true}, sitemap, zap.NewNop())
	result := crawler.DiscoverPages(context.Background(), "https://example.com", 10, 2)

	require.Empty(t, result.Error)
	require.Equal(t, DiscoveryMethodSitemap, result.DiscoveryMethod)
	// Sitemap placeholders survive with unresolved metadata.
	require.Len(t, result.Pages, 2)
	for _, p := range result.Pages {
		require.Empty(t, p.Title)
	}
}

func TestDiscoverPagesCancelledContextPartialResult(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{}}
	sitemap := &stubSitemap{urls: []string{
		"https://example.com/one",
		"https://example.com/two",
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	crawler := NewCrawler(fetcher, sitemap, zap.NewNop())
	result := crawler.DiscoverPages(ctx, "https://example.com", 10, 2)

	// Deadline expiry yields whatever was discovered so far, never an error.
	require.Empty(t, result.Error)
	require.Len(t, result.Pages, 2)
	require.Equal(t, 2, result.TotalFound)
	require.Empty(t, fetcher.calls)
}

func TestDiscoverPagesInvalidSeed(t *testing.T) {
	t.Parallel()

	crawler := NewCrawler(&stubFetcher{}, &stubSitemap{}, zap.NewNop())

	result := crawler.DiscoverPages(context.Background(), "ftp://example.com", 10, 2)
	require.NotEmpty(t, result.Error)
	require.Empty(t, result.Pages)

	result = crawler.DiscoverPages(context.Background(), "http://192.168.1.5", 10, 2)
	require.NotEmpty(t, result.Error)
}

func TestDiscoverPagesNoRefetchOfSitemapSeeds(t *testing.T) {
	t.Parallel()

	const seed = "https://example.com"
	fetcher := &stubFetcher{pages: map[string]string{
		seed:                        page("Home", "https://example.com/about"),
		"https://example.com/about": page("About"),
	}}
	sitemap := &stubSitemap{urls: []string{"https://example.com/about"}}

	crawler := NewCrawler(fetcher, sitemap, zap.NewNop())
	result := crawler.DiscoverPages(context.Background(), seed, 10, 2)

	fetched := map[string]int{}
	for _, u := range fetcher.calls {
		fetched[u]++
	}
	require.Equal(t, 1, fetched["https://example.com/about"])

	byURL := map[string]PageMetadata{}
	for _, p := range result.Pages {
		byURL[p.URL] = p
	}
	// The crawl enriches the sitemap placeholder instead of duplicating it.
	require.Equal(t, 2, result.TotalFound)
	require.Equal(t, "About", byURL["https://example.com/about"].Title)
}

func TestClampBudgets(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultMaxPages, clamp(0, DefaultMaxPages, MinMaxPages, MaxMaxPages))
	require.Equal(t, MinMaxPages, clamp(3, DefaultMaxPages, MinMaxPages, MaxMaxPages))
	require.Equal(t, MaxMaxPages, clamp(5000, DefaultMaxPages, MinMaxPages, MaxMaxPages))
	require.Equal(t, DefaultMaxDepth, clamp(0, DefaultMaxDepth, MinMaxDepth, MaxMaxDepth))
	require.Equal(t, MinMaxDepth, clamp(-2, DefaultMaxDepth, MinMaxDepth, MaxMaxDepth))
	require.Equal(t, MaxMaxDepth, clamp(99, DefaultMaxDepth, MinMaxDepth, MaxMaxDepth))
}
