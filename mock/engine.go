package mock

import (
	"context"

	"github.com/fwojciec/webintel"
)

var _ webintel.Engine = (*Engine)(nil)

// Engine is a mock implementation of webintel.Engine. An unset NameFn
// reports "mock".
type Engine struct {
	NameFn  func() string
	CrawlFn func(ctx context.Context, url string, opts webintel.EngineOptions) (webintel.PageStream, error)
}

func (e *Engine) Name() string {
	if e.NameFn == nil {
		return "mock"
	}
	return e.NameFn()
}

func (e *Engine) Crawl(ctx context.Context, url string, opts webintel.EngineOptions) (webintel.PageStream, error) {
	return e.CrawlFn(ctx, url, opts)
}

var _ webintel.PageStream = (*PageStream)(nil)

// PageStream is a mock implementation of webintel.PageStream. An unset
// CloseFn makes Close a no-op.
type PageStream struct {
	NextFn  func(ctx context.Context) (*webintel.RawPage, error)
	CloseFn func() error
}

func (s *PageStream) Next(ctx context.Context) (*webintel.RawPage, error) {
	return s.NextFn(ctx)
}

func (s *PageStream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Pages returns a PageStream that yields the given pages in order and
// then reports exhaustion.
func Pages(pages ...*webintel.RawPage) *PageStream {
	i := 0
	return &PageStream{
		NextFn: func(ctx context.Context) (*webintel.RawPage, error) {
			if i >= len(pages) {
				return nil, nil
			}
			page := pages[i]
			i++
			return page, nil
		},
	}
}
