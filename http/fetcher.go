// Package http provides HTTP-based implementations of webintel.Fetcher
// and webintel.SitemapService for sites that don't require JavaScript
// rendering.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/webintel"
)

// DefaultFetchTimeout bounds each HTTP request. It matches
// rod.DefaultFetchTimeout so static and rendered fetches behave alike.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent is sent with every request so site operators can
// identify the crawler.
const DefaultUserAgent = "webintel/1.0"

// Ensure Fetcher implements webintel.Fetcher at compile time.
var _ webintel.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content over plain HTTP. It returns the page
// source exactly as served, so sites that build their content with
// JavaScript need rod.Fetcher instead.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout overrides DefaultFetchTimeout for all requests made by
// this Fetcher.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
// Defaults to DefaultUserAgent if not specified.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher returns a Fetcher configured by opts.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{Timeout: f.timeout}

	return f
}

// Fetch performs a GET request against url and returns the response
// body. Any status other than 200 is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// Close satisfies webintel.Fetcher. There is nothing to release for a
// plain HTTP client.
func (f *Fetcher) Close() error {
	return nil
}
