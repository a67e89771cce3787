// Package colly provides a webintel.Engine built on the colly scraping
// framework. It crawls static sites over plain HTTP with concurrent
// fetching; JavaScript-rendered sites need the rod-backed engine instead.
package colly

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/webintel"
	colly "github.com/gocolly/colly/v2"
)

const (
	defaultParallelism    = 4
	defaultRequestTimeout = 10 * time.Second
	defaultUserAgent      = "webintel/1.0"

	// streamBuffer absorbs pages completed by in-flight requests after
	// the consumer stops reading.
	streamBuffer = 16
)

// Ensure Engine implements webintel.Engine at compile time.
var _ webintel.Engine = (*Engine)(nil)

// Engine crawls websites breadth-first using colly's asynchronous
// collector. Pages are extracted and converted as they arrive, so the
// returned stream yields pages in completion order rather than discovery
// order.
type Engine struct {
	Extractor webintel.Extractor
	Converter webintel.Converter

	// UserAgent is sent with every request. Defaults to webintel/1.0.
	UserAgent string

	// Parallelism bounds concurrent requests. Defaults to 4.
	Parallelism int

	// RequestTimeout caps a single HTTP request. Defaults to 10s.
	RequestTimeout time.Duration

	// Delay is the politeness delay between requests to the same domain.
	// Zero means no delay beyond the parallelism bound.
	Delay time.Duration
}

// Name implements webintel.Engine.
func (e *Engine) Name() string { return "colly" }

// Crawl starts a breadth-first crawl from sourceURL and returns a stream
// of raw pages. Traversal stays on the source host; when the source URL
// has a non-root path, only URLs under that path prefix are followed.
func (e *Engine) Crawl(ctx context.Context, sourceURL string, opts webintel.EngineOptions) (webintel.PageStream, error) {
	base, err := url.Parse(sourceURL)
	if err != nil || base.Host == "" {
		return nil, webintel.Errorf(webintel.ECRAWLER, "invalid URL: %s", sourceURL)
	}

	pathPrefix := base.Path
	if pathPrefix == "/" {
		pathPrefix = ""
	}

	userAgent := e.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	// colly counts the start request as depth 1, so a webintel depth of N
	// maps to a colly max depth of N+1.
	collector := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.MaxDepth(opts.Depth+1),
		colly.Async(true),
		colly.AllowedDomains(base.Hostname()),
		colly.UserAgent(userAgent),
	)
	// NewCollector ignores robots.txt unless told otherwise.
	collector.IgnoreRobotsTxt = false

	requestTimeout := e.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	collector.SetRequestTimeout(requestTimeout)

	parallelism := e.Parallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       e.Delay,
		Parallelism: parallelism,
	}); err != nil {
		return nil, webintel.Errorf(webintel.ECRAWLER, "configuring rate limit: %v", err)
	}

	stream := webintel.NewChannelStream(streamBuffer)
	var abort atomic.Bool
	var sent atomic.Int64

	collector.OnRequest(func(r *colly.Request) {
		if abort.Load() {
			r.Abort()
		}
	})

	collector.OnHTML("html", func(el *colly.HTMLElement) {
		if abort.Load() {
			return
		}
		page := e.buildPage(el)
		if !stream.Send(page) {
			abort.Store(true)
			return
		}
		if opts.MaxPages > 0 && sent.Add(1) >= int64(opts.MaxPages) {
			// The consumer has all the pages it asked for; stop
			// scheduling new requests.
			abort.Store(true)
		}
	})

	collector.OnHTML("a[href]", func(el *colly.HTMLElement) {
		if abort.Load() {
			return
		}
		link, ok := followableLink(el, pathPrefix, opts.Filter)
		if !ok {
			return
		}
		// Off-host and revisited links are rejected by the collector
		_ = el.Request.Visit(link)
	})

	collector.OnError(func(r *colly.Response, visitErr error) {
		if abort.Load() || isSkipError(visitErr) {
			return
		}
		// A page that could not be fetched still occupies a slot in the
		// stream so the pipeline can count it as failed.
		page := &webintel.RawPage{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
		}
		if !stream.Send(page) {
			abort.Store(true)
		}
	})

	go func() {
		if err := collector.Visit(sourceURL); err != nil {
			stream.Fail(webintel.Errorf(webintel.ECRAWLER, "crawl failed to start: %v", err))
			stream.Finish()
			return
		}
		collector.Wait()
		stream.Finish()
	}()

	return stream, nil
}

// buildPage assembles a RawPage from a fetched document, extracting main
// content and converting it to markdown. Extraction failures leave the
// cleaned fields empty; the raw HTML is always preserved.
func (e *Engine) buildPage(el *colly.HTMLElement) *webintel.RawPage {
	rawHTML := string(el.Response.Body)
	page := &webintel.RawPage{
		URL:        el.Request.URL.String(),
		StatusCode: el.Response.StatusCode,
		HTML:       rawHTML,
	}

	extracted, err := e.Extractor.Extract(rawHTML)
	if err != nil {
		return page
	}
	page.Title = extracted.Title
	page.CleanedHTML = extracted.ContentHTML

	if markdown, err := e.Converter.Convert(extracted.ContentHTML); err == nil {
		page.Markdown = markdown
	}
	return page
}

// followableLink resolves an anchor href and reports whether the crawl
// should follow it. Fragments are stripped so anchors within a page do not
// count as distinct URLs.
func followableLink(el *colly.HTMLElement, pathPrefix string, filter *webintel.URLFilter) (string, bool) {
	abs := el.Request.AbsoluteURL(el.Attr("href"))
	if abs == "" {
		return "", false
	}
	u, err := url.Parse(abs)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	u.Fragment = ""

	if pathPrefix != "" && !strings.HasPrefix(u.Path, pathPrefix) {
		return "", false
	}

	link := u.String()
	if !filter.Match(link) {
		return "", false
	}
	return link, true
}

// isSkipError reports whether the error marks a URL the collector chose
// not to fetch rather than a fetch failure.
func isSkipError(err error) bool {
	var alreadyVisited *colly.AlreadyVisitedError
	return errors.As(err, &alreadyVisited) ||
		errors.Is(err, colly.ErrMaxDepth) ||
		errors.Is(err, colly.ErrForbiddenDomain) ||
		errors.Is(err, colly.ErrRobotsTxtBlocked)
}
