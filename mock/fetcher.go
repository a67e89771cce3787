package mock

import (
	"context"

	"github.com/fwojciec/webintel"
)

var _ webintel.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of webintel.Fetcher. FetchFn must be
// set by the test; an unset CloseFn makes Close a no-op.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
