package crawl

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/webintel"
)

// Default frontier sizing: room for 10k URLs with a 1% chance that the
// Bloom filter wrongly drops a never-seen URL.
const (
	frontierExpectedURLs      = 10000
	frontierFalsePositiveRate = 0.01
)

// Walker is a breadth-first crawl engine over a Fetcher. It discovers
// links with a LinkExtractor, dedupes them through a frontier, and
// produces one raw page per fetched URL. Pages are produced lazily: each
// Next call on the returned stream performs one fetch, so an abandoned
// stream costs nothing beyond the pages already pulled.
//
// Crawl scope is the source URL's host and path prefix, narrowed further
// by the options' filter. Fetch failures yield a contentless page rather
// than failing the stream, so one bad URL does not abort the traversal.
type Walker struct {
	Fetcher   webintel.Fetcher
	Extractor webintel.Extractor
	Converter webintel.Converter
	Links     webintel.LinkExtractor

	// Limiter, if set, paces requests per domain.
	Limiter webintel.DomainLimiter

	// Sitemaps, if set, seeds the frontier with sitemap-discovered URLs.
	// Discovery failures are ignored; link-following covers the gap.
	Sitemaps webintel.SitemapService

	// RetryDelays are the backoff delays between fetch attempts.
	// Nil means DefaultRetryDelays; an empty slice disables retries.
	RetryDelays []time.Duration

	// EngineName is the name reported to the registry. The zero value
	// reports "walker"; the CLI names instances after their fetcher.
	EngineName string

	// NewFrontier overrides frontier construction.
	NewFrontier func() webintel.URLFrontier
}

var _ webintel.Engine = (*Walker)(nil)

// Name implements webintel.Engine.
func (w *Walker) Name() string {
	if w.EngineName != "" {
		return w.EngineName
	}
	return "walker"
}

// Crawl implements webintel.Engine. It seeds the frontier with the source
// URL (and sitemap URLs when a SitemapService is configured) and returns a
// pull stream that fetches one page per Next call.
func (w *Walker) Crawl(ctx context.Context, sourceURL string, opts webintel.EngineOptions) (webintel.PageStream, error) {
	parsed, err := url.Parse(sourceURL)
	if err != nil || parsed.Host == "" {
		return nil, webintel.Errorf(webintel.ECRAWLER, "invalid URL: %s", sourceURL)
	}

	frontier := w.newFrontier()
	frontier.Push(webintel.DiscoveredLink{
		URL:      sourceURL,
		Priority: webintel.PriorityNavigation,
		Depth:    0,
	})

	s := &walkStream{
		walker:     w,
		frontier:   frontier,
		opts:       opts,
		host:       parsed.Host,
		pathPrefix: parsed.Path,
	}

	if w.Sitemaps != nil {
		w.seedFromSitemap(ctx, s, sourceURL)
	}

	return s, nil
}

// seedFromSitemap pushes sitemap-discovered URLs into the frontier at
// content priority, depth 1. Errors are swallowed: a site without a
// sitemap is still crawlable by link-following.
func (w *Walker) seedFromSitemap(ctx context.Context, s *walkStream, sourceURL string) {
	urls, err := w.Sitemaps.DiscoverURLs(ctx, sourceURL, s.opts.Filter)
	if err != nil {
		return
	}
	for _, u := range urls {
		if !s.inScope(u) {
			continue
		}
		s.frontier.Push(webintel.DiscoveredLink{
			URL:      u,
			Priority: webintel.PriorityContent,
			Depth:    1,
		})
	}
}

func (w *Walker) newFrontier() webintel.URLFrontier {
	if w.NewFrontier != nil {
		return w.NewFrontier()
	}
	return NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
}

// walkStream is the pull-shape page stream produced by Walker.Crawl.
// It is single-pass and must be consumed from one goroutine.
type walkStream struct {
	walker     *Walker
	frontier   webintel.URLFrontier
	opts       webintel.EngineOptions
	host       string
	pathPrefix string
	yielded    int
	closed     bool
}

var _ webintel.PageStream = (*walkStream)(nil)

// Next fetches and processes the next URL from the frontier. It returns
// (nil, nil) when the frontier is exhausted, the page cap is reached, or
// the stream is closed. Fetch and extraction failures surface as pages
// without content; only cancellation fails the stream itself.
func (s *walkStream) Next(ctx context.Context) (*webintel.RawPage, error) {
	if s.closed {
		return nil, nil
	}
	if s.opts.MaxPages > 0 && s.yielded >= s.opts.MaxPages {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	link, ok := s.frontier.Pop()
	if !ok {
		return nil, nil
	}

	page, err := s.visit(ctx, link)
	if err != nil {
		return nil, err
	}
	s.yielded++
	return page, nil
}

// Close implements webintel.PageStream. The walker fetches lazily, so
// closing only marks the stream exhausted; the Fetcher is owned by the
// caller and stays open.
func (s *walkStream) Close() error {
	s.closed = true
	return nil
}

// visit fetches one URL, queues its in-scope links, and builds the raw
// page. The returned error is non-nil only for cancellation.
func (s *walkStream) visit(ctx context.Context, link webintel.DiscoveredLink) (*webintel.RawPage, error) {
	w := s.walker

	if w.Limiter != nil {
		linkURL, err := url.Parse(link.URL)
		if err != nil {
			return &webintel.RawPage{URL: link.URL}, nil
		}
		if err := w.Limiter.Wait(ctx, linkURL.Host); err != nil {
			return nil, err
		}
	}

	delays := w.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := fetchWithRetry(ctx, w.Fetcher, link.URL, delays)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &webintel.RawPage{URL: link.URL}, nil
	}

	if link.Depth < s.opts.Depth {
		s.queueLinks(html, link)
	}

	page := &webintel.RawPage{
		URL:  link.URL,
		HTML: html,
	}
	extracted, err := w.Extractor.Extract(html)
	if err != nil {
		return page, nil
	}
	page.Title = extracted.Title
	page.CleanedHTML = extracted.ContentHTML

	if markdown, err := w.Converter.Convert(extracted.ContentHTML); err == nil {
		page.Markdown = markdown
	}

	return page, nil
}

// queueLinks extracts links from html and pushes the in-scope ones onto
// the frontier one level deeper than their referrer.
func (s *walkStream) queueLinks(html string, from webintel.DiscoveredLink) {
	links, err := s.walker.Links.ExtractLinks(html, from.URL)
	if err != nil {
		return
	}
	for _, discovered := range links {
		if !s.inScope(discovered.URL) {
			continue
		}
		discovered.Depth = from.Depth + 1
		s.frontier.Push(discovered)
	}
}

// inScope reports whether a URL belongs to the crawl: same host as the
// source, under its path prefix, and passing the options' filter.
func (s *walkStream) inScope(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Host != s.host {
		return false
	}
	if !strings.HasPrefix(parsed.Path, s.pathPrefix) {
		return false
	}
	return s.opts.Filter.Match(rawURL)
}
