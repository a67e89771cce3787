package webintel

import "context"

// StreamFunc receives response fragments as a streaming query produces
// them. Returning a non-nil error stops the stream; the error is returned
// to the caller unchanged so it can be matched with errors.Is.
type StreamFunc func(fragment string) error

// Agent answers questions through a language model backend.
type Agent interface {
	// Name returns the backend's registry name.
	Name() string

	// Query performs one blocking generation. The question and the
	// context's content and history are assembled into a single prompt.
	// Returns EAGENT when the backend fails or produces no response.
	Query(ctx context.Context, question string, qc QueryContext) (*QueryResult, error)

	// StreamQuery streams response fragments to fn as the backend
	// produces them. The stream is finite, single-pass, and stops early
	// when fn returns an error.
	StreamQuery(ctx context.Context, question string, qc QueryContext, fn StreamFunc) error

	// ValidateConnection reports whether the backend is reachable.
	ValidateConnection(ctx context.Context) error
}
