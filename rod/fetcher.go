// Package rod provides a webintel.Fetcher backed by headless Chrome for
// pages that require JavaScript rendering.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/webintel"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout caps how long a single page fetch may take.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements webintel.Fetcher at compile time.
var _ webintel.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// The underlying browser is recycled periodically (see BrowserManager) so
// long crawls don't accumulate memory. Fetcher is safe for concurrent use
// by multiple goroutines.
type Fetcher struct {
	manager         *BrowserManager
	fetchTimeout    time.Duration
	pagesPerBrowser int64
	closed          atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout caps the duration of a single Fetch call.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.fetchTimeout = d
	}
}

// WithPagesPerBrowser sets how many pages are fetched before the underlying
// browser is recycled. Defaults to DefaultMaxPages if not specified.
func WithPagesPerBrowser(n int64) Option {
	return func(f *Fetcher) {
		f.pagesPerBrowser = n
	}
}

// NewFetcher launches a headless Chrome browser and returns a Fetcher that
// drives it. Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	var mopts []ManagerOption
	if f.pagesPerBrowser > 0 {
		mopts = append(mopts, WithMaxPages(f.pagesPerBrowser))
	}
	manager, err := NewBrowserManager(mopts...)
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML, including the
// contents of any open shadow roots.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", webintel.Errorf(webintel.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if f.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.fetchTimeout)
		defer cancel()
	}

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	// Scope all page operations to the caller's context
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	res, err := page.Eval(serializeWithShadowRoots)
	if err != nil {
		return "", err
	}

	f.manager.IncrementPageCount()
	return res.Value.Str(), nil
}

// serializeWithShadowRoots renders the document to HTML. Element.getHTML
// (Chrome 125+) inlines the collected open shadow roots as declarative
// shadow DOM so web component content survives extraction; older browsers
// fall back to plain outerHTML.
const serializeWithShadowRoots = `() => {
	const collectRoots = (root, acc) => {
		for (const el of root.querySelectorAll('*')) {
			if (el.shadowRoot) {
				acc.push(el.shadowRoot);
				collectRoots(el.shadowRoot, acc);
			}
		}
		return acc;
	};
	const doctype = document.doctype ? '<!DOCTYPE ' + document.doctype.name + '>' : '';
	const html = document.documentElement;
	if (typeof html.getHTML === 'function') {
		return doctype + html.getHTML({ shadowRoots: collectRoots(document, []) });
	}
	return doctype + html.outerHTML;
}`

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
