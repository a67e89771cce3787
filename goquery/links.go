// Package goquery provides link discovery on HTML documents.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fwojciec/webintel"
)

var _ webintel.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor discovers anchors in an HTML document and classifies them
// by the page region they appear in: navigation regions rank above main
// content, and anchors outside any semantic region rank lowest. Links are
// deduplicated by URL, keeping the highest-priority occurrence, and
// returned in first-occurrence order. Links to other hosts and non-HTTP
// schemes (javascript:, mailto:, tel:, data:) are dropped.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// regionSelectors pairs each CSS region with its crawl priority, scanned
// highest priority first.
var regionSelectors = []struct {
	selector string
	priority webintel.LinkPriority
}{
	{"nav a[href], header a[href]", webintel.PriorityNavigation},
	{"main a[href], article a[href], aside a[href]", webintel.PriorityContent},
	{"a[href]", webintel.PriorityFallback},
}

// ExtractLinks implements webintel.LinkExtractor.
func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]webintel.DiscoveredLink, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, webintel.Errorf(webintel.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, webintel.Errorf(webintel.EINVALID, "failed to parse HTML: %v", err)
	}

	// Track seen URLs with their index in the result slice so a later,
	// higher-priority occurrence can upgrade in place.
	seen := make(map[string]int)
	var links []webintel.DiscoveredLink

	for _, region := range regionSelectors {
		doc.Find(region.selector).Each(func(_ int, sel *goquery.Selection) {
			href, exists := sel.Attr("href")
			if !exists || href == "" {
				return
			}
			if isNonHTTPLink(href) {
				return
			}

			resolved := resolveURL(base, href)
			if resolved == "" {
				return
			}

			// External links (exact host match; subdomains are external)
			if !isSameHost(base, resolved) {
				return
			}

			link := webintel.DiscoveredLink{
				URL:      resolved,
				Priority: region.priority,
			}

			if idx, ok := seen[resolved]; ok {
				if region.priority > links[idx].Priority {
					links[idx] = link
				}
			} else {
				seen[resolved] = len(links)
				links = append(links, link)
			}
		})
	}

	return links, nil
}

// resolveURL resolves a relative URL against a base URL.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// isSameHost checks if the resolved URL has the same host as the base URL.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
