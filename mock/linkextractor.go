package mock

import "github.com/fwojciec/webintel"

var _ webintel.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of webintel.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, baseURL string) ([]webintel.DiscoveredLink, error)
}

func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]webintel.DiscoveredLink, error) {
	return e.ExtractLinksFn(html, baseURL)
}
