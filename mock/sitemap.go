package mock

import (
	"context"

	"github.com/fwojciec/webintel"
)

var _ webintel.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of webintel.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *webintel.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *webintel.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
