package webintel

// Converter renders extracted HTML as Markdown.
type Converter interface {
	// Convert transforms clean HTML, typically an Extractor's output,
	// into Markdown.
	Convert(html string) (string, error)
}
