package webintel

// ExtractResult is the outcome of boilerplate removal on one page.
type ExtractResult struct {
	// Title is the page title, taken from document metadata.
	Title string

	// ContentHTML is the page's main content with navigation, footers,
	// sidebars and ads stripped. Document structure is preserved.
	ContentHTML string
}

// Extractor isolates the main content of an HTML page.
type Extractor interface {
	// Extract returns the page's main content and metadata title.
	Extract(html string) (*ExtractResult, error)
}
