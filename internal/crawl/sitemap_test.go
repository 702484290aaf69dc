package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSitemapDiscoverer(t *testing.T) {
	t.Parallel()

	var serverURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sitemap.xml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>%s/about</loc></url>
  <url><loc>%s/blog/launch</loc></url>
  <url><loc>%s/files/brochure.pdf</loc></url>
  <url><loc>https://other.example.net/page</loc></url>
  <url><loc>  </loc></url>
</urlset>`, serverURL, serverURL, serverURL)
	}))
	t.Cleanup(srv.Close)
	serverURL = srv.URL

	seed, err := url.Parse(srv.URL)
	require.NoError(t, err)

	discoverer := NewSitemapDiscoverer("siteingest-test", zap.NewNop())
	urls := discoverer.Discover(context.Background(), seed)
	require.Equal(t, []string{srv.URL + "/about", srv.URL + "/blog/launch"}, urls)
}

func TestSitemapDiscovererBestEffort(t *testing.T) {
	t.Parallel()

	discoverer := NewSitemapDiscoverer("siteingest-test", zap.NewNop())
	ctx := context.Background()

	t.Run("missing sitemap", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(srv.Close)
		seed, err := url.Parse(srv.URL)
		require.NoError(t, err)
		require.Empty(t, discoverer.Discover(ctx, seed))
	})

	t.Run("unreachable host", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		seed, err := url.Parse(srv.URL)
		require.NoError(t, err)
		require.Empty(t, discoverer.Discover(ctx, seed))
	})
}
