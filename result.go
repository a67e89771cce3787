package webintel

import (
	"strings"
	"time"
)

// CrawlResult represents one complete crawl run. It is assembled once at
// the end of a crawl invocation and never mutated afterward. JSON tags
// match the persisted crawl-result schema; Success is derived from the
// page count and not persisted.
type CrawlResult struct {
	SourceURL   string         `json:"source_url"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	Success     bool           `json:"-"`
	TotalPages  int            `json:"total_pages"`
	FailedPages int            `json:"failed_pages"`
	CrawlDepth  int            `json:"crawl_depth"`
	Metadata    map[string]any `json:"metadata"`
	Pages       []PageResult   `json:"pages"`
}

// CombinedContent returns all page contents joined in crawl order, each
// preceded by a delimiter naming the page's URL.
func (r *CrawlResult) CombinedContent() string {
	parts := make([]string, 0, len(r.Pages))
	for _, page := range r.Pages {
		parts = append(parts, "--- From: "+page.URL+" ---\n"+page.Content)
	}
	return strings.Join(parts, "\n\n")
}

// AllURLs returns the crawled URLs in crawl order.
func (r *CrawlResult) AllURLs() []string {
	urls := make([]string, len(r.Pages))
	for i, page := range r.Pages {
		urls[i] = page.URL
	}
	return urls
}

// SuccessRate returns the fraction of processed pages that succeeded,
// between 0.0 and 1.0. A result with no pages has a success rate of 0.
func (r *CrawlResult) SuccessRate() float64 {
	if r.TotalPages == 0 {
		return 0
	}
	return float64(r.TotalPages-r.FailedPages) / float64(r.TotalPages)
}

// Duration returns the wall-clock time from crawl start to completion, or
// 0 if the crawl never completed.
func (r *CrawlResult) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
