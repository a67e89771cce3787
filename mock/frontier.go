package mock

import (
	"context"

	"github.com/fwojciec/webintel"
)

var _ webintel.URLFrontier = (*URLFrontier)(nil)

// URLFrontier is a mock implementation of webintel.URLFrontier.
type URLFrontier struct {
	PushFn func(link webintel.DiscoveredLink) bool
	PopFn  func() (webintel.DiscoveredLink, bool)
	LenFn  func() int
	SeenFn func(url string) bool
}

func (f *URLFrontier) Push(link webintel.DiscoveredLink) bool {
	return f.PushFn(link)
}

func (f *URLFrontier) Pop() (webintel.DiscoveredLink, bool) {
	return f.PopFn()
}

func (f *URLFrontier) Len() int {
	return f.LenFn()
}

func (f *URLFrontier) Seen(url string) bool {
	return f.SeenFn(url)
}

var _ webintel.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of webintel.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
