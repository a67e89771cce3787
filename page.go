package webintel

import (
	"context"
	"sync"
	"time"
)

// PageResult represents one crawled page after content normalization.
// It is created once per successfully processed page and not mutated
// afterward. JSON tags match the persisted crawl-result schema.
type PageResult struct {
	URL        string         `json:"url"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	StatusCode int            `json:"status_code"` // 0 = unknown
	CrawledAt  time.Time      `json:"crawled_at"`
	Metadata   map[string]any `json:"metadata"`
}

// RawPage is a page as yielded by an Engine, before content normalization.
// Content fields are consulted in decreasing preference: Markdown, then
// CleanedHTML, then HTML. A page with all three empty counts as failed.
type RawPage struct {
	URL         string
	Title       string
	StatusCode  int
	Markdown    string
	CleanedHTML string
	HTML        string
}

// EngineOptions configures a single engine crawl.
type EngineOptions struct {
	// Depth bounds breadth-first expansion from the start URL.
	Depth int

	// MaxPages hints how many pages the consumer wants. Engines may use
	// it to stop discovery early; 0 means no hint.
	MaxPages int

	// Filter restricts which discovered URLs are followed. Nil means no
	// restriction beyond the engine's same-host scope.
	Filter *URLFilter
}

// PageStream is a finite, single-pass sequence of crawled pages. Next
// returns (nil, nil) once the stream is exhausted. Streams are not
// restartable. Close releases producer resources and is safe to call
// more than once; a consumer may close a partially consumed stream.
type PageStream interface {
	Next(ctx context.Context) (*RawPage, error)
	Close() error
}

// Engine performs a bounded-depth crawl starting from url and exposes the
// discovered pages as a PageStream. Implementations hide fetch transport,
// link discovery, and content extraction.
type Engine interface {
	// Name returns the engine's registry name.
	Name() string

	Crawl(ctx context.Context, url string, opts EngineOptions) (PageStream, error)
}

// ProgressFunc is called after each page is processed. Total is 0 when the
// number of remaining pages is unknown, which is the common case during
// streaming traversal.
type ProgressFunc func(message string, index, total int)

// CrawlOptions configures a pipeline crawl.
type CrawlOptions struct {
	// Depth bounds traversal and scales the crawl's wall-clock budget.
	Depth int

	// MaxPages stops traversal once this many pages have been captured.
	// The stop is cooperative; in-flight pages may still complete. 0
	// means unbounded.
	MaxPages int

	// Filter restricts which discovered URLs the engine follows.
	Filter *URLFilter

	// Progress, if set, receives per-page progress reports.
	Progress ProgressFunc
}

// ChannelStream adapts a push-based page producer to the PageStream
// interface, so push engines and pull engines feed the same processing
// loop. The producer calls Send per page and Finish when done; a terminal
// failure is recorded with Fail before Finish.
type ChannelStream struct {
	pages chan *RawPage
	done  chan struct{}
	once  sync.Once
	err   error
}

// NewChannelStream returns a stream backed by a channel with the given
// buffer size.
func NewChannelStream(buf int) *ChannelStream {
	return &ChannelStream{
		pages: make(chan *RawPage, buf),
		done:  make(chan struct{}),
	}
}

// Send delivers a page to the consumer. It returns false when the stream
// has been closed, in which case the page is dropped and the producer
// should stop.
func (s *ChannelStream) Send(page *RawPage) bool {
	select {
	case s.pages <- page:
		return true
	case <-s.done:
		return false
	}
}

// Fail records the stream's terminal error. It must be called before
// Finish; the consumer observes the error after draining buffered pages.
func (s *ChannelStream) Fail(err error) {
	s.err = err
}

// Finish marks the end of the stream. The producer must not call Send or
// Fail afterward.
func (s *ChannelStream) Finish() {
	close(s.pages)
}

// Next implements PageStream. Once the consumer has closed the stream,
// Next reports exhaustion even if undelivered pages remain buffered.
func (s *ChannelStream) Next(ctx context.Context) (*RawPage, error) {
	select {
	case <-s.done:
		return nil, nil
	default:
	}

	select {
	case page, ok := <-s.pages:
		if !ok {
			return nil, s.err
		}
		return page, nil
	case <-s.done:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close implements PageStream. It unblocks a producer waiting in Send.
func (s *ChannelStream) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
