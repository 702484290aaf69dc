// Package classify implements the URL-shape heuristic that separates likely
// content pages from navigation and listing noise. The rules are product-tuned
// and evaluated in a fixed order; changing order or thresholds changes which
// pages a dashboard pre-selects for ingestion.
package classify

import (
	"net/url"
	"strings"
)

var junkFragments = []string{
	"/tag/", "/category/", "/search/", "/label/", "/archive/", "/page/",
}

var contentFragments = []string{
	"/product/", "/item/", "/blog/", "/article/",
}

var yearFragments = []string{
	"/2023/", "/2024/", "/2025/",
}

// IsLikelyContentPage reports whether the URL's shape suggests a page with
// substantive content. It performs no network I/O; any parse failure counts
// as not-content.
func IsLikelyContentPage(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	path := parsed.Path
	if path == "" || path == "/" {
		return false
	}
	lower := strings.ToLower(path)
	for _, frag := range junkFragments {
		if strings.Contains(lower, frag) {
			return false
		}
	}
	query := strings.ToLower(parsed.RawQuery)
	if strings.Contains(query, "sort=") || strings.Contains(query, "filter=") {
		return false
	}
	for _, frag := range contentFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	for _, frag := range yearFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return pathDepth(path) > 1
}

func pathDepth(path string) int {
	depth := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}
