// Package extract fetches a single page and converts its HTML into a clean
// text document for chunking. Non-content DOM (scripts, ad containers) is
// stripped, while inline data the page carries in form values and image alt
// text is preserved.
package extract

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/coraldesk/siteingest/internal/crawl"
	"github.com/coraldesk/siteingest/internal/safeurl"
	"github.com/coraldesk/siteingest/internal/storage"
)

// Metadata accompanies the extracted document text.
type Metadata struct {
	URL         string `json:"url"`
	Domain      string `json:"domain"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ContentSize int    `json:"content_size"`
	// IsDynamicContent is always false: pages are fetched statically and
	// client-rendered content is a known accuracy gap, not detected here.
	IsDynamicContent bool `json:"is_dynamic_content"`
}

// WebsiteParseResult is the extractor's output for one page.
type WebsiteParseResult struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// FetchError reports a non-2xx response for an explicitly selected page.
// Unlike discovery, targeted extraction surfaces fetch failures so a batch
// caller can report exactly which page failed.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

// Extractor converts pages into text documents. When an archive provider is
// configured, raw HTML snapshots are saved best-effort for later reprocessing.
type Extractor struct {
	fetcher crawl.Fetcher
	archive storage.Provider
	logger  *zap.Logger
}

// New builds an Extractor. archive may be nil.
func New(fetcher crawl.Fetcher, archive storage.Provider, logger *zap.Logger) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		archive: archive,
		logger:  logger,
	}
}

// Extract fetches pageURL and returns the formatted text document plus
// metadata.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (WebsiteParseResult, error) {
	if err := safeurl.Validate(pageURL); err != nil {
		return WebsiteParseResult{}, err
	}
	page, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		if page.StatusCode > 0 && (page.StatusCode < 200 || page.StatusCode >= 300) {
			return WebsiteParseResult{}, &FetchError{URL: pageURL, Status: page.StatusCode}
		}
		return WebsiteParseResult{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	if page.StatusCode < 200 || page.StatusCode >= 300 {
		return WebsiteParseResult{}, &FetchError{URL: pageURL, Status: page.StatusCode}
	}

	e.archiveSnapshot(ctx, pageURL, page.Body)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return WebsiteParseResult{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	title := documentTitle(doc)
	description := documentDescription(doc)

	doc.Find("script, style, noscript, svg, canvas").Remove()
	doc.Find("[class], [id]").Each(func(_ int, sel *goquery.Selection) {
		if isAdContainer(sel) {
			sel.Remove()
		}
	})

	body := renderText(contentRoot(doc))
	text := formatDocument(title, pageURL, body)

	domain := ""
	if parsed, err := url.Parse(pageURL); err == nil {
		domain = parsed.Hostname()
	}

	return WebsiteParseResult{
		Text: text,
		Metadata: Metadata{
			URL:         pageURL,
			Domain:      domain,
			Title:       title,
			Description: description,
			ContentSize: len(text),
		},
	}, nil
}

func (e *Extractor) archiveSnapshot(ctx context.Context, pageURL string, body []byte) {
	if e.archive == nil {
		return
	}
	name := snapshotObjectName(pageURL, time.Now().UTC())
	if err := e.archive.Save(ctx, name, body); err != nil {
		e.logger.Warn("failed to archive page snapshot",
			zap.String("url", pageURL), zap.Error(err))
	}
}

func snapshotObjectName(pageURL string, fetchedAt time.Time) string {
	urlHash := fmt.Sprintf("%x", sha256.Sum256([]byte(pageURL)))
	return fmt.Sprintf("pages/%s/%s.html", fetchedAt.Format("2006-01-02"), urlHash)
}

func documentTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	return title
}

func documentDescription(doc *goquery.Document) string {
	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	if strings.TrimSpace(description) == "" {
		description, _ = doc.Find(`meta[property="og:description"]`).First().Attr("content")
	}
	return strings.TrimSpace(description)
}

// contentRoot picks the most specific main-content container, falling back to
// the document body.
func contentRoot(doc *goquery.Document) *html.Node {
	sel := doc.Find("main, article, [role=main], .content, .main-content").First()
	if sel.Length() == 0 {
		sel = doc.Find("body").First()
	}
	if sel.Length() == 0 {
		if len(doc.Nodes) > 0 {
			return doc.Nodes[0]
		}
		return nil
	}
	return sel.Nodes[0]
}

// formatDocument emits the markdown-like header block followed by the
// whitespace-collapsed body.
func formatDocument(title, pageURL, body string) string {
	lines := make([]string, 0, 64)
	for _, line := range strings.Split(body, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			lines = append(lines, strings.Join(fields, " "))
		}
	}
	return fmt.Sprintf("# Website: %s\n\n**URL:** %s\n\n---\n\n%s",
		title, pageURL, strings.Join(lines, "\n\n"))
}
