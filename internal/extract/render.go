package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Block elements get newline padding so adjacent text never concatenates
// across visual boundaries; inline containers get space padding.
var (
	blockTags  = map[string]struct{}{"div": {}, "p": {}, "li": {}, "tr": {}}
	inlineTags = map[string]struct{}{"span": {}, "td": {}, "th": {}, "label": {}}
)

// renderText walks the DOM subtree and emits its visible text, converting
// form values and image alt text into inline markers.
func renderText(root *html.Node) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	appendNodeText(root, &b)
	return b.String()
}

func appendNodeText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "br":
			b.WriteString("\n")
			return
		case "input", "textarea":
			b.WriteString(inputText(n))
			return
		case "img":
			b.WriteString(imageText(n))
			return
		}
		if _, block := blockTags[n.Data]; block {
			b.WriteString("\n")
			appendChildren(n, b)
			b.WriteString("\n")
			return
		}
		if _, inline := inlineTags[n.Data]; inline {
			b.WriteString(" ")
			appendChildren(n, b)
			b.WriteString(" ")
			return
		}
	}
	appendChildren(n, b)
}

func appendChildren(n *html.Node, b *strings.Builder) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		appendNodeText(child, b)
	}
}

// inputText preserves form values: values that look like real data pass
// through verbatim, anything else is wrapped so downstream retrieval can tell
// it came from a form control.
func inputText(n *html.Node) string {
	value := attrValue(n, "value")
	if n.Data == "textarea" && value == "" {
		value = textContent(n)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if looksLikeData(value) {
		return value
	}
	return "[Input: " + value + "]"
}

var (
	fourDigits   = regexp.MustCompile(`\d{4}`)
	currencyLike = regexp.MustCompile(`[$€£¥]\s*\d|\d+[.,]\d{2}`)
	alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// looksLikeData reports whether a form value carries page data (an account
// number, an email, a price) rather than UI chrome like a button label.
func looksLikeData(value string) bool {
	switch {
	case fourDigits.MatchString(value):
		return true
	case strings.Contains(value, "@"):
		return true
	case currencyLike.MatchString(value):
		return true
	case len(value) >= 12 && alphanumeric.MatchString(value):
		return true
	}
	return false
}

// Placeholder words that make an alt attribute useless for retrieval.
var genericAltWords = map[string]struct{}{
	"image":   {},
	"img":     {},
	"photo":   {},
	"picture": {},
	"icon":    {},
	"logo":    {},
	"banner":  {},
}

func imageText(n *html.Node) string {
	alt := strings.TrimSpace(attrValue(n, "alt"))
	if len(alt) < 3 {
		return ""
	}
	if _, generic := genericAltWords[strings.ToLower(alt)]; generic {
		return ""
	}
	return "[Image: " + alt + "]"
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			b.WriteString(child.Data)
		}
	}
	return b.String()
}

// isAdContainer matches class/id tokens against ad-related patterns. Matching
// is per token, not substring, so "header" or "badge" never trip it.
func isAdContainer(sel *goquery.Selection) bool {
	class, _ := sel.Attr("class")
	for _, token := range strings.Fields(class) {
		if isAdToken(token) {
			return true
		}
	}
	id, _ := sel.Attr("id")
	if id != "" && isAdToken(id) {
		return true
	}
	return false
}

func isAdToken(token string) bool {
	token = strings.ToLower(token)
	switch token {
	case "ad", "ads", "advert", "advertisement":
		return true
	}
	switch {
	case strings.HasPrefix(token, "ad-"), strings.HasPrefix(token, "ads-"):
		return true
	case strings.HasSuffix(token, "-ad"), strings.HasSuffix(token, "-ads"):
		return true
	case strings.Contains(token, "adslot"), strings.Contains(token, "adsense"):
		return true
	case strings.Contains(token, "banner") && strings.Contains(token, "ad"):
		return true
	}
	return false
}
