package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webintel"
)

// Ensure LoggingStorage implements webintel.Storage.
var _ webintel.Storage = (*LoggingStorage)(nil)

// LoggingStorage wraps a Storage with per-operation logging.
type LoggingStorage struct {
	next   webintel.Storage
	logger *slog.Logger
}

// NewLoggingStorage creates a new LoggingStorage.
func NewLoggingStorage(next webintel.Storage, logger *slog.Logger) *LoggingStorage {
	return &LoggingStorage{next: next, logger: logger}
}

// SaveCrawlResult delegates to the wrapped storage and logs the operation.
func (s *LoggingStorage) SaveCrawlResult(ctx context.Context, result *webintel.CrawlResult, format webintel.Format) (id string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("save crawl result",
			"url", result.SourceURL,
			"format", format,
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveCrawlResult(ctx, result, format)
}

// LoadCrawlResult delegates to the wrapped storage and logs the operation.
func (s *LoggingStorage) LoadCrawlResult(ctx context.Context, id string) (result *webintel.CrawlResult, err error) {
	defer func(begin time.Time) {
		pages := 0
		if result != nil {
			pages = len(result.Pages)
		}
		s.logger.Info("load crawl result",
			"id", id,
			"pages", pages,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.LoadCrawlResult(ctx, id)
}

// LoadContent delegates to the wrapped storage and logs the operation.
func (s *LoggingStorage) LoadContent(ctx context.Context, path string) (content string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("load content",
			"path", path,
			"bytes", len(content),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.LoadContent(ctx, path)
}

// SaveSession delegates to the wrapped storage and logs the operation.
func (s *LoggingStorage) SaveSession(ctx context.Context, session *webintel.Session) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("save session",
			"session_id", session.ID,
			"messages", len(session.Messages),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveSession(ctx, session)
}

// LoadSession delegates to the wrapped storage and logs the operation.
func (s *LoggingStorage) LoadSession(ctx context.Context, id string) (session *webintel.Session, err error) {
	defer func(begin time.Time) {
		messages := 0
		if session != nil {
			messages = len(session.Messages)
		}
		s.logger.Info("load session",
			"session_id", id,
			"messages", messages,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.LoadSession(ctx, id)
}

// SessionExists delegates to the wrapped storage and logs the operation.
func (s *LoggingStorage) SessionExists(ctx context.Context, id string) (exists bool, err error) {
	defer func(begin time.Time) {
		s.logger.Info("session exists",
			"session_id", id,
			"exists", exists,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SessionExists(ctx, id)
}
