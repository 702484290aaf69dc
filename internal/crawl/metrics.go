package crawl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pagesFetched counts pages fetched successfully during discovery.
	pagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siteingest_crawl_pages_fetched_total",
		Help: "Pages fetched successfully during site discovery.",
	})
	// fetchErrors counts page fetches that failed and were skipped.
	fetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siteingest_crawl_fetch_errors_total",
		Help: "Page fetches that failed during site discovery.",
	})
	// sitemapSeeds counts URLs seeded from sitemap.xml files.
	sitemapSeeds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siteingest_crawl_sitemap_seeds_total",
		Help: "Candidate URLs seeded from sitemap.xml files.",
	})
)
