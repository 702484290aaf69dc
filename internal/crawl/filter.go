package crawl

import (
	"net/url"
	"path"
	"strings"
)

// Binary and media extensions that never contain crawlable content.
var blockedExtensions = map[string]struct{}{
	".pdf": {},
	".zip": {},
	".exe": {},
	".jpg": {},
	".png": {},
	".gif": {},
}

// Infrastructure path fragments served by CDNs and asset pipelines.
var blockedPathFragments = []string{"/cdn-cgi/", "/static/", "/assets/"}

// normalizeCandidate resolves raw against base, strips the fragment, and
// reports whether the result is a valid crawl candidate for the seed origin:
// same hostname, no blocked extension, no asset-pipeline path. It is applied
// to sitemap entries and discovered anchors alike.
func normalizeCandidate(seed, base *url.URL, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	abs.Fragment = ""

	scheme := strings.ToLower(abs.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(abs.Hostname(), seed.Hostname()) {
		return "", false
	}
	if _, blocked := blockedExtensions[strings.ToLower(path.Ext(abs.Path))]; blocked {
		return "", false
	}
	lowerPath := strings.ToLower(abs.Path)
	for _, frag := range blockedPathFragments {
		if strings.Contains(lowerPath, frag) {
			return "", false
		}
	}
	return abs.String(), true
}
