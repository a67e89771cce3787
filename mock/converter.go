package mock

import "github.com/fwojciec/webintel"

var _ webintel.Converter = (*Converter)(nil)

// Converter is a mock implementation of webintel.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
