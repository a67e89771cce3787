package webintel

import "context"

// SitemapService lists the URLs a site advertises through its sitemaps.
type SitemapService interface {
	// DiscoverURLs returns the sitemap URLs for the site at baseURL.
	// Sitemap locations come from robots.txt directives, with /sitemap.xml
	// as the fallback; sitemap indexes are resolved recursively. When
	// baseURL carries a path, only URLs under that path are returned. A
	// nil filter passes every URL.
	DiscoverURLs(ctx context.Context, baseURL string, filter *URLFilter) ([]string, error)
}
