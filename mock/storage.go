package mock

import (
	"context"

	"github.com/fwojciec/webintel"
)

var _ webintel.Storage = (*Storage)(nil)

// Storage is a mock implementation of webintel.Storage.
type Storage struct {
	SaveCrawlResultFn func(ctx context.Context, result *webintel.CrawlResult, format webintel.Format) (string, error)
	LoadCrawlResultFn func(ctx context.Context, id string) (*webintel.CrawlResult, error)
	LoadContentFn     func(ctx context.Context, path string) (string, error)
	SaveSessionFn     func(ctx context.Context, session *webintel.Session) error
	LoadSessionFn     func(ctx context.Context, id string) (*webintel.Session, error)
	SessionExistsFn   func(ctx context.Context, id string) (bool, error)
}

func (s *Storage) SaveCrawlResult(ctx context.Context, result *webintel.CrawlResult, format webintel.Format) (string, error) {
	return s.SaveCrawlResultFn(ctx, result, format)
}

func (s *Storage) LoadCrawlResult(ctx context.Context, id string) (*webintel.CrawlResult, error) {
	return s.LoadCrawlResultFn(ctx, id)
}

func (s *Storage) LoadContent(ctx context.Context, path string) (string, error) {
	return s.LoadContentFn(ctx, path)
}

func (s *Storage) SaveSession(ctx context.Context, session *webintel.Session) error {
	return s.SaveSessionFn(ctx, session)
}

func (s *Storage) LoadSession(ctx context.Context, id string) (*webintel.Session, error) {
	return s.LoadSessionFn(ctx, id)
}

func (s *Storage) SessionExists(ctx context.Context, id string) (bool, error) {
	return s.SessionExistsFn(ctx, id)
}
