package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/fwojciec/webintel"
)

// Compile-time interface verification.
var _ webintel.Storage = (*Storage)(nil)

// Storage implements webintel.Storage using SQLite. Crawl results span the
// crawls and pages tables, sessions span the sessions and messages tables.
// Pages and messages keep their original order through a position column.
type Storage struct {
	db *DB
}

// NewStorage creates a Storage backed by db. The database must be open.
func NewStorage(db *DB) *Storage {
	return &Storage{db: db}
}

// hashContent computes the xxHash of page content as a hex string. Hashes
// make re-crawl diffing cheap without comparing full content columns.
func hashContent(content string) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64String(content))
	return hex.EncodeToString(b[:])
}

// SaveCrawlResult persists the result and returns the generated result id.
// Only the JSON format is supported; markdown digests are a file-storage
// feature.
func (s *Storage) SaveCrawlResult(ctx context.Context, result *webintel.CrawlResult, format webintel.Format) (string, error) {
	switch format {
	case webintel.FormatJSON:
	case webintel.FormatMarkdown:
		return "", webintel.Errorf(webintel.EINVALID, "markdown format requires file storage")
	default:
		return "", webintel.Errorf(webintel.EINVALID, "unsupported format: %s", format)
	}

	id := webintel.ResultID(result.SourceURL, time.Now())

	metadata, err := marshalMetadata(result.Metadata)
	if err != nil {
		return "", webintel.Errorf(webintel.ESTORAGE, "encoding crawl metadata: %v", err)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return "", webintel.Errorf(webintel.ESTORAGE, "saving crawl result: %v", err)
	}
	defer tx.Rollback()

	// Same-second saves for the same host share an id. Replacing the
	// existing rows matches the file backend, which overwrites the file.
	if _, err := tx.ExecContext(ctx, "DELETE FROM pages WHERE crawl_id = ?", id); err != nil {
		return "", webintel.Errorf(webintel.ESTORAGE, "saving crawl result: %v", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO crawls (id, source_url, started_at, completed_at, total_pages, failed_pages, crawl_depth, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, result.SourceURL,
		result.StartedAt.UTC().Format(time.RFC3339), result.CompletedAt.UTC().Format(time.RFC3339),
		result.TotalPages, result.FailedPages, result.CrawlDepth, metadata)
	if err != nil {
		return "", webintel.Errorf(webintel.ESTORAGE, "saving crawl result: %v", err)
	}

	for i, page := range result.Pages {
		pageMetadata, err := marshalMetadata(page.Metadata)
		if err != nil {
			return "", webintel.Errorf(webintel.ESTORAGE, "encoding page metadata: %v", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO pages (id, crawl_id, url, title, content, content_hash, status_code, position, crawled_at, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), id, page.URL, page.Title, page.Content, hashContent(page.Content),
			page.StatusCode, i, page.CrawledAt.UTC().Format(time.RFC3339), pageMetadata)
		if err != nil {
			return "", webintel.Errorf(webintel.ESTORAGE, "saving page %s: %v", page.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", webintel.Errorf(webintel.ESTORAGE, "saving crawl result: %v", err)
	}

	return id, nil
}

// LoadCrawlResult reloads a crawl result by id. Success is not persisted;
// it is rederived from the loaded page count.
func (s *Storage) LoadCrawlResult(ctx context.Context, id string) (*webintel.CrawlResult, error) {
	var result webintel.CrawlResult
	var startedAt, completedAt, metadata string

	err := s.db.QueryRowContext(ctx, `
		SELECT source_url, started_at, completed_at, total_pages, failed_pages, crawl_depth, metadata
		FROM crawls
		WHERE id = ?
	`, id).Scan(&result.SourceURL, &startedAt, &completedAt,
		&result.TotalPages, &result.FailedPages, &result.CrawlDepth, &metadata)

	if err == sql.ErrNoRows {
		return nil, webintel.Errorf(webintel.ESTORAGE, "crawl result not found: %s", id)
	}
	if err != nil {
		return nil, webintel.Errorf(webintel.ESTORAGE, "reading crawl result: %v", err)
	}

	if result.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if result.CompletedAt, err = parseRFC3339(completedAt, "completed_at"); err != nil {
		return nil, err
	}
	if result.Metadata, err = unmarshalMetadata(metadata); err != nil {
		return nil, webintel.Errorf(webintel.ESTORAGE, "parsing crawl metadata: %v", err)
	}

	pages, err := s.loadPages(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Pages = pages
	result.Success = len(result.Pages) > 0

	return &result, nil
}

// loadPages returns a crawl's pages in their original crawl order.
func (s *Storage) loadPages(ctx context.Context, crawlID string) ([]webintel.PageResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, title, content, status_code, crawled_at, metadata
		FROM pages
		WHERE crawl_id = ?
		ORDER BY position ASC
	`, crawlID)
	if err != nil {
		return nil, webintel.Errorf(webintel.ESTORAGE, "reading pages: %v", err)
	}
	defer rows.Close()

	var pages []webintel.PageResult
	for rows.Next() {
		var page webintel.PageResult
		var crawledAt, metadata string

		if err := rows.Scan(&page.URL, &page.Title, &page.Content, &page.StatusCode, &crawledAt, &metadata); err != nil {
			return nil, webintel.Errorf(webintel.ESTORAGE, "reading pages: %v", err)
		}

		if page.CrawledAt, err = parseRFC3339(crawledAt, "crawled_at"); err != nil {
			return nil, err
		}
		if page.Metadata, err = unmarshalMetadata(metadata); err != nil {
			return nil, webintel.Errorf(webintel.ESTORAGE, "parsing page metadata: %v", err)
		}

		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, webintel.Errorf(webintel.ESTORAGE, "reading pages: %v", err)
	}

	return pages, nil
}

// LoadContent reads raw text content from a filesystem path. Content files
// live on the filesystem regardless of which backend persists crawls.
func (s *Storage) LoadContent(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", webintel.Errorf(webintel.ESTORAGE, "file not found: %s", path)
		}
		return "", webintel.Errorf(webintel.ESTORAGE, "reading file: %v", err)
	}
	return string(data), nil
}

// SaveSession persists the session, replacing any previous record. The
// session is the unit of persistence; its messages are rewritten wholesale.
func (s *Storage) SaveSession(ctx context.Context, session *webintel.Session) error {
	metadata, err := marshalMetadata(session.Metadata)
	if err != nil {
		return webintel.Errorf(webintel.ESTORAGE, "encoding session metadata: %v", err)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return webintel.Errorf(webintel.ESTORAGE, "saving session: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions (id, context_source, created_at, updated_at, metadata)
		VALUES (?, ?, ?, ?, ?)
	`, session.ID, session.ContextSource,
		session.CreatedAt.UTC().Format(time.RFC3339), session.UpdatedAt.UTC().Format(time.RFC3339), metadata)
	if err != nil {
		return webintel.Errorf(webintel.ESTORAGE, "saving session: %v", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", session.ID); err != nil {
		return webintel.Errorf(webintel.ESTORAGE, "saving session: %v", err)
	}

	for i, msg := range session.Messages {
		msgMetadata, err := marshalMetadata(msg.Metadata)
		if err != nil {
			return webintel.Errorf(webintel.ESTORAGE, "encoding message metadata: %v", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO messages (id, session_id, role, content, position, timestamp, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), session.ID, msg.Role, msg.Content, i,
			msg.Timestamp.UTC().Format(time.RFC3339), msgMetadata)
		if err != nil {
			return webintel.Errorf(webintel.ESTORAGE, "saving message: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return webintel.Errorf(webintel.ESTORAGE, "saving session: %v", err)
	}

	return nil
}

// LoadSession loads a session by id. A session id with no persisted record
// yields a fresh empty session, so conversations can start without an
// explicit create step.
func (s *Storage) LoadSession(ctx context.Context, id string) (*webintel.Session, error) {
	session := &webintel.Session{ID: id}
	var createdAt, updatedAt, metadata string

	err := s.db.QueryRowContext(ctx, `
		SELECT context_source, created_at, updated_at, metadata
		FROM sessions
		WHERE id = ?
	`, id).Scan(&session.ContextSource, &createdAt, &updatedAt, &metadata)

	if err == sql.ErrNoRows {
		return webintel.NewSession(id), nil
	}
	if err != nil {
		return nil, webintel.Errorf(webintel.ESTORAGE, "reading session: %v", err)
	}

	if session.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if session.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	if session.Metadata, err = unmarshalMetadata(metadata); err != nil {
		return nil, webintel.Errorf(webintel.ESTORAGE, "parsing session metadata: %v", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, timestamp, metadata
		FROM messages
		WHERE session_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, webintel.Errorf(webintel.ESTORAGE, "reading messages: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg webintel.Message
		var timestamp, msgMetadata string

		if err := rows.Scan(&msg.Role, &msg.Content, &timestamp, &msgMetadata); err != nil {
			return nil, webintel.Errorf(webintel.ESTORAGE, "reading messages: %v", err)
		}

		if msg.Timestamp, err = parseRFC3339(timestamp, "timestamp"); err != nil {
			return nil, err
		}
		if msg.Metadata, err = unmarshalMetadata(msgMetadata); err != nil {
			return nil, webintel.Errorf(webintel.ESTORAGE, "parsing message metadata: %v", err)
		}

		session.Messages = append(session.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, webintel.Errorf(webintel.ESTORAGE, "reading messages: %v", err)
	}

	return session, nil
}

// SessionExists reports whether a persisted record exists for id.
func (s *Storage) SessionExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM sessions WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, webintel.Errorf(webintel.ESTORAGE, "checking session: %v", err)
	}
	return true, nil
}
