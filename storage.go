package webintel

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Format selects how a crawl result is persisted.
type Format string

// Supported persistence formats.
const (
	// FormatMarkdown is a human-readable digest. It is write-only;
	// markdown results cannot be reloaded.
	FormatMarkdown Format = "markdown"

	// FormatJSON is a full structured dump that reloads exactly.
	FormatJSON Format = "json"
)

// Storage persists crawl results and conversation sessions.
type Storage interface {
	// SaveCrawlResult persists result in the given format and returns
	// the result id. Unsupported formats fail with EINVALID.
	SaveCrawlResult(ctx context.Context, result *CrawlResult, format Format) (string, error)

	// LoadCrawlResult reloads a crawl result saved as JSON.
	// Returns ESTORAGE if no result with that id exists.
	LoadCrawlResult(ctx context.Context, id string) (*CrawlResult, error)

	// LoadContent reads raw text content from a filesystem path.
	// Returns ESTORAGE if the path does not exist or cannot be read.
	LoadContent(ctx context.Context, path string) (string, error)

	// SaveSession persists the session, replacing any previous record.
	SaveSession(ctx context.Context, session *Session) error

	// LoadSession loads a session by id. An id with no persisted record
	// yields a fresh empty session for that id, not an error.
	LoadSession(ctx context.Context, id string) (*Session, error)

	// SessionExists reports whether a persisted record exists for id.
	SessionExists(ctx context.Context, id string) (bool, error)
}

// ResultID derives a crawl result identifier from the source URL's host
// and a timestamp, formatted as <host>_<YYYYMMDD_HHMMSS> with dots in the
// host replaced by underscores. Results for the same host within the same
// second collide; an accepted limitation for a single-process CLI tool.
func ResultID(sourceURL string, now time.Time) string {
	host := ""
	if u, err := url.Parse(sourceURL); err == nil {
		host = u.Host
	}
	host = strings.ReplaceAll(host, ".", "_")
	return host + "_" + now.Format("20060102_150405")
}
