// Package trafilatura extracts main page content using go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/fwojciec/webintel"
)

// Ensure Extractor implements webintel.Extractor at compile time.
var _ webintel.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to strip boilerplate from HTML pages.
// The heuristic fallback is enabled so pages that defeat the primary
// extraction still yield content.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page's title and main content with boilerplate
// removed.
func (e *Extractor) Extract(rawHTML string) (*webintel.ExtractResult, error) {
	if rawHTML == "" {
		return nil, webintel.Errorf(webintel.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &webintel.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode serializes the extracted content node back to HTML.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
