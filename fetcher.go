package webintel

import "context"

// Fetcher retrieves HTML from a single URL. Implementations range from a
// plain HTTP client to full browser automation for JavaScript-rendered
// pages; the crawl walker treats them interchangeably.
type Fetcher interface {
	// Fetch retrieves the page at url and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases transport resources such as browser processes.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
