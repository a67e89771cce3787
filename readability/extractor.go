// Package readability extracts main page content using go-readability.
// It trades trafilatura's precision for resilience on news-style layouts
// and is selectable through the CLI's extractor registry.
package readability

import (
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/fwojciec/webintel"
)

// Ensure Extractor implements webintel.Extractor at compile time.
var _ webintel.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*webintel.ExtractResult, error) {
	if rawHTML == "" {
		return nil, webintel.Errorf(webintel.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &webintel.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
