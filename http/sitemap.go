package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/fwojciec/webintel"
	"golang.org/x/sync/errgroup"
)

// sitemapConcurrency bounds how many child sitemaps of an index are
// fetched in parallel.
const sitemapConcurrency = 4

// Ensure SitemapService implements webintel.SitemapService.
var _ webintel.SitemapService = (*SitemapService)(nil)

// SitemapService enumerates a site's pages by reading its sitemaps.
// Sitemap locations come from robots.txt directives, with /sitemap.xml
// as the fallback.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService returns a SitemapService that fetches over client.
// A nil client means http.DefaultClient.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs returns every page URL listed in the site's sitemaps,
// deduplicated and filtered. A site with no sitemaps yields an empty
// slice, not nil.
//
// When baseURL has a non-root path (e.g., https://acme.dev/blog/),
// only URLs under that prefix are returned.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *webintel.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	pathPrefix := base.Path
	if pathPrefix == "/" {
		pathPrefix = ""
	}

	// Sitemaps live at the root of the domain, so strip any path
	sitemapBase := *base
	sitemapBase.Path = ""

	sitemapURLs, err := s.findSitemapURLs(ctx, &sitemapBase)
	if err != nil {
		return nil, err
	}
	if len(sitemapURLs) == 0 {
		return []string{}, nil
	}

	all, err := s.resolveAll(ctx, sitemapURLs, newVisitedSet())
	if err != nil {
		return nil, err
	}

	// Deduplicate across sitemaps, then apply the prefix and user filters
	seenURLs := make(map[string]bool)
	var out []string
	for _, u := range all {
		if seenURLs[u] {
			continue
		}
		seenURLs[u] = true
		if pathPrefix != "" && !matchesPathPrefix(u, pathPrefix) {
			continue
		}
		if !filter.Match(u) {
			continue
		}
		out = append(out, u)
	}

	return out, nil
}

// matchesPathPrefix reports whether the URL's path sits under prefix,
// respecting path boundaries. A prefix without a trailing / is normalized
// to have one, so /blog matches /blog/ and /blog/post but not /blogroll.
func matchesPathPrefix(rawURL, prefix string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}
	return strings.HasPrefix(parsed.Path, prefix)
}

// findSitemapURLs locates the site's sitemaps. robots.txt directives
// win; a /sitemap.xml that answers a HEAD request is the fallback.
func (s *SitemapService) findSitemapURLs(ctx context.Context, base *url.URL) ([]string, error) {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	sitemaps, err := s.parseSitemapsFromRobots(ctx, robotsURL.String())
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}

	sitemapURL := base.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := s.urlExists(ctx, sitemapURL.String())
	if err != nil {
		// A missing fallback is not an error, but cancellation is.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{sitemapURL.String()}, nil
	}

	return nil, nil
}

// parseSitemapsFromRobots collects the Sitemap: directives of a
// robots.txt file. The directive name is matched case-insensitively.
func (s *SitemapService) parseSitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.fetchURL(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	const directive = "sitemap:"

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < len(directive) || !strings.EqualFold(line[:len(directive)], directive) {
			continue
		}
		if u := strings.TrimSpace(line[len(directive):]); u != "" {
			sitemaps = append(sitemaps, u)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}

	return sitemaps, nil
}

// resolveAll resolves a batch of sitemap URLs concurrently. Results keep
// the order of sitemapURLs regardless of fetch completion order.
func (s *SitemapService) resolveAll(ctx context.Context, sitemapURLs []string, visited *visitedSet) ([]string, error) {
	results := make([][]string, len(sitemapURLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sitemapConcurrency)
	for i, sitemapURL := range sitemapURLs {
		i, sitemapURL := i, sitemapURL
		g.Go(func() error {
			urls, err := s.resolveSitemap(gctx, sitemapURL, visited)
			if err != nil {
				return err
			}
			results[i] = urls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []string
	for _, urls := range results {
		all = append(all, urls...)
	}
	return all, nil
}

// resolveSitemap fetches and parses a sitemap, handling both urlset and
// sitemapindex documents. Index entries are resolved recursively.
func (s *SitemapService) resolveSitemap(ctx context.Context, sitemapURL string, visited *visitedSet) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A sitemap index may list the same child twice, or cycle.
	if !visited.add(sitemapURL) {
		return nil, nil
	}

	body, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML")
	}

	if root.Tag == "sitemapindex" {
		return s.resolveAll(ctx, locValues(root, "sitemap"), visited)
	}

	// Anything that is not an index is read as a urlset.
	return locValues(root, "url"), nil
}

// locValues collects the <loc> text of every <tag> child under parent.
// Both sitemapindex and urlset documents share this shape.
func locValues(parent *etree.Element, tag string) []string {
	var urls []string
	for _, el := range parent.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// fetchURL issues a GET and hands back the body for the caller to close.
func (s *SitemapService) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, targetURL)
	}

	return resp.Body, nil
}

// urlExists probes targetURL with a HEAD request.
func (s *SitemapService) urlExists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// visitedSet tracks processed sitemap URLs. Safe for concurrent use by
// the resolver goroutines.
type visitedSet struct {
	mu sync.Mutex
	m  map[string]bool
}

func newVisitedSet() *visitedSet {
	return &visitedSet{m: make(map[string]bool)}
}

// add records the URL and reports whether it was newly added.
func (v *visitedSet) add(u string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.m[u] {
		return false
	}
	v.m[u] = true
	return true
}
