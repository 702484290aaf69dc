package crawl

import "net/http"

// DiscoveryMethod records which source seeded a crawl's page list.
type DiscoveryMethod string

// Discovery methods reported in CrawlResult.
const (
	DiscoveryMethodSitemap DiscoveryMethod = "sitemap"
	DiscoveryMethodCrawl   DiscoveryMethod = "crawl"
)

// PageMetadata describes one discovered page. Identity is the URL string;
// metadata fields stay empty for pages that were seeded but never fetched.
type PageMetadata struct {
	URL                string `json:"url"`
	Title              string `json:"title,omitempty"`
	Description        string `json:"description,omitempty"`
	EstimatedSizeBytes int    `json:"estimated_size_bytes,omitempty"`
}

// CrawlResult is the terminal output of a discovery run. Pages are
// deduplicated by URL in first-seen order and never exceed the caller's page
// budget. Error is set only for failures outside page-level fetching, such as
// an invalid seed; individual dead pages never surface here.
type CrawlResult struct {
	Pages           []PageMetadata  `json:"pages"`
	TotalFound      int             `json:"total_found"`
	DiscoveryMethod DiscoveryMethod `json:"discovery_method"`
	Error           string          `json:"error,omitempty"`
}

// Page is the raw result of fetching a single URL.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// queueEntry is a transient BFS work item.
type queueEntry struct {
	url   string
	depth int
}

// crawlState holds the bookkeeping for one discovery run. seen guards
// enqueueing, visited guards fetching, and discovered keeps first-seen
// insertion order. State is never shared across crawl invocations.
type crawlState struct {
	visited    map[string]struct{}
	seen       map[string]struct{}
	queue      []queueEntry
	discovered map[string]*PageMetadata
	order      []string
}

func newCrawlState(startURL string) *crawlState {
	return &crawlState{
		visited:    make(map[string]struct{}),
		seen:       map[string]struct{}{startURL: {}},
		queue:      []queueEntry{{url: startURL, depth: 0}},
		discovered: make(map[string]*PageMetadata),
	}
}

// enqueue appends a work item and marks it seen. Returns false when the URL
// was already enqueued before.
func (s *crawlState) enqueue(url string, depth int) bool {
	if _, ok := s.seen[url]; ok {
		return false
	}
	s.seen[url] = struct{}{}
	s.queue = append(s.queue, queueEntry{url: url, depth: depth})
	return true
}

func (s *crawlState) dequeue() (queueEntry, bool) {
	if len(s.queue) == 0 {
		return queueEntry{}, false
	}
	entry := s.queue[0]
	s.queue = s.queue[1:]
	return entry, true
}

// addPlaceholder records a URL with bare metadata if it is new.
func (s *crawlState) addPlaceholder(url string) {
	if _, ok := s.discovered[url]; ok {
		return
	}
	s.discovered[url] = &PageMetadata{URL: url}
	s.order = append(s.order, url)
}

// upsert merges fetched metadata over any placeholder, preserving first-seen
// ordering.
func (s *crawlState) upsert(meta PageMetadata) {
	if existing, ok := s.discovered[meta.URL]; ok {
		existing.Title = meta.Title
		existing.Description = meta.Description
		existing.EstimatedSizeBytes = meta.EstimatedSizeBytes
		return
	}
	copied := meta
	s.discovered[meta.URL] = &copied
	s.order = append(s.order, meta.URL)
}

func (s *crawlState) pages() []PageMetadata {
	out := make([]PageMetadata, 0, len(s.order))
	for _, url := range s.order {
		out = append(out, *s.discovered[url])
	}
	return out
}
