package webintel

import "context"

// URLFrontier orders the URLs a crawl has discovered but not yet visited.
// Implementations deduplicate: a URL enters the frontier at most once over
// the lifetime of a crawl, no matter how often it is rediscovered.
type URLFrontier interface {
	// Push queues a link. It reports false when the URL was seen before,
	// in which case the frontier is unchanged.
	Push(link DiscoveredLink) bool

	// Pop removes and returns the best queued link, preferring higher
	// priority and then shallower depth. It reports false when the
	// frontier is empty.
	Pop() (DiscoveredLink, bool)

	// Len returns the number of queued links.
	Len() int

	// Seen reports whether the URL was ever pushed.
	Seen(url string) bool
}

// DomainLimiter paces outbound requests per domain.
type DomainLimiter interface {
	// Wait blocks until a request to domain may proceed, or until ctx is
	// done, in which case it returns the context's error.
	Wait(ctx context.Context, domain string) error
}
