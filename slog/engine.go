package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webintel"
)

// Ensure LoggingEngine implements webintel.Engine.
var _ webintel.Engine = (*LoggingEngine)(nil)

// LoggingEngine wraps an Engine with crawl lifecycle logging. The
// stream it returns logs each page at debug level and reports the
// final page count when the crawl finishes or aborts.
type LoggingEngine struct {
	next   webintel.Engine
	logger *slog.Logger
}

// NewLoggingEngine creates a new LoggingEngine.
func NewLoggingEngine(next webintel.Engine, logger *slog.Logger) *LoggingEngine {
	return &LoggingEngine{next: next, logger: logger}
}

// Name delegates to the wrapped engine.
func (e *LoggingEngine) Name() string {
	return e.next.Name()
}

// Crawl delegates to the wrapped engine and wraps the returned stream
// so page delivery and completion are logged.
func (e *LoggingEngine) Crawl(ctx context.Context, url string, opts webintel.EngineOptions) (webintel.PageStream, error) {
	stream, err := e.next.Crawl(ctx, url, opts)
	if err != nil {
		e.logger.Error("crawl failed to start",
			"engine", e.next.Name(),
			"url", url,
			"err", err,
		)
		return nil, err
	}
	e.logger.Info("crawl started",
		"engine", e.next.Name(),
		"url", url,
		"depth", opts.Depth,
		"max_pages", opts.MaxPages,
	)
	return &loggingStream{
		next:   stream,
		logger: e.logger,
		url:    url,
		begin:  time.Now(),
	}, nil
}

type loggingStream struct {
	next   webintel.PageStream
	logger *slog.Logger
	url    string
	begin  time.Time
	pages  int
	done   bool
}

func (s *loggingStream) Next(ctx context.Context) (*webintel.RawPage, error) {
	page, err := s.next.Next(ctx)
	if err != nil {
		if !s.done {
			s.done = true
			s.logger.Error("crawl aborted",
				"url", s.url,
				"pages", s.pages,
				"duration", time.Since(s.begin),
				"err", err,
			)
		}
		return nil, err
	}
	if page == nil {
		if !s.done {
			s.done = true
			s.logger.Info("crawl finished",
				"url", s.url,
				"pages", s.pages,
				"duration", time.Since(s.begin),
			)
		}
		return nil, nil
	}
	s.pages++
	s.logger.Debug("page received",
		"url", page.URL,
		"index", s.pages,
	)
	return page, nil
}

func (s *loggingStream) Close() error {
	return s.next.Close()
}
