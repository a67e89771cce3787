// Package fs provides file-based storage for crawl results and
// conversation sessions.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/webintel"
)

// Ensure Storage implements webintel.Storage at compile time.
var _ webintel.Storage = (*Storage)(nil)

// Storage persists crawl results and sessions as files under a base
// directory. Crawl results live in crawls/ (one .md or .json file per
// result), sessions in sessions/ (one .json file per session).
type Storage struct {
	crawlsDir   string
	sessionsDir string
}

// NewStorage creates the storage layout under baseDir.
func NewStorage(baseDir string) (*Storage, error) {
	s := &Storage{
		crawlsDir:   filepath.Join(baseDir, "crawls"),
		sessionsDir: filepath.Join(baseDir, "sessions"),
	}
	for _, dir := range []string{s.crawlsDir, s.sessionsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, webintel.Errorf(webintel.ESTORAGE, "creating storage directory: %v", err)
		}
	}
	return s, nil
}

// SaveCrawlResult persists the result in the given format and returns the
// generated result id.
func (s *Storage) SaveCrawlResult(ctx context.Context, result *webintel.CrawlResult, format webintel.Format) (string, error) {
	id := webintel.ResultID(result.SourceURL, time.Now())

	switch format {
	case webintel.FormatMarkdown:
		path := filepath.Join(s.crawlsDir, id+".md")
		if err := os.WriteFile(path, []byte(FormatCrawlResult(result)), 0644); err != nil {
			return "", webintel.Errorf(webintel.ESTORAGE, "saving crawl result: %v", err)
		}
	case webintel.FormatJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", webintel.Errorf(webintel.ESTORAGE, "encoding crawl result: %v", err)
		}
		path := filepath.Join(s.crawlsDir, id+".json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return "", webintel.Errorf(webintel.ESTORAGE, "saving crawl result: %v", err)
		}
	default:
		return "", webintel.Errorf(webintel.EINVALID, "unsupported format: %s", format)
	}

	return id, nil
}

// FormatCrawlResult renders a crawl result as a human-readable markdown
// digest: a header with the source URL, crawl timestamp, page count and
// success rate, followed by the combined page content. The digest is
// write-only; results that need to be reloaded use the JSON format.
func FormatCrawlResult(result *webintel.CrawlResult) string {
	var b strings.Builder
	b.WriteString("# Crawl Result: ")
	b.WriteString(result.SourceURL)
	b.WriteString("\n\n**Crawled at:** ")
	b.WriteString(result.StartedAt.Format(time.RFC3339))
	b.WriteString("\n**Total pages:** ")
	b.WriteString(strconv.Itoa(result.TotalPages))
	b.WriteString("\n**Success rate:** ")
	b.WriteString(fmt.Sprintf("%.1f%%", result.SuccessRate()*100))
	b.WriteString("\n\n---\n\n")
	b.WriteString(result.CombinedContent())
	b.WriteString("\n")
	return b.String()
}

// LoadCrawlResult reloads a crawl result saved as JSON. Success is not
// persisted; it is rederived from the loaded page count.
func (s *Storage) LoadCrawlResult(ctx context.Context, id string) (*webintel.CrawlResult, error) {
	path := filepath.Join(s.crawlsDir, id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, webintel.Errorf(webintel.ESTORAGE, "crawl result not found: %s", id)
		}
		return nil, webintel.Errorf(webintel.ESTORAGE, "reading crawl result: %v", err)
	}

	var result webintel.CrawlResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, webintel.Errorf(webintel.ESTORAGE, "parsing crawl result %s: %v", id, err)
	}
	result.Success = len(result.Pages) > 0

	return &result, nil
}

// LoadContent reads raw text content from a filesystem path.
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

// SaveSession persists the session, replacing any previous record.
func (s *Storage) SaveSession(ctx context.Context, session *webintel.Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return webintel.Errorf(webintel.ESTORAGE, "encoding session: %v", err)
	}
	path := filepath.Join(s.sessionsDir, session.ID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return webintel.Errorf(webintel.ESTORAGE, "saving session: %v", err)
	}
	return nil
}

// LoadSession loads a session by id. A session id with no persisted
// record yields a fresh empty session, so conversations can start without
// an explicit create step.
func (s *Storage) LoadSession(ctx context.Context, id string) (*webintel.Session, error) {
	path := filepath.Join(s.sessionsDir, id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return webintel.NewSession(id), nil
		}
		return nil, webintel.Errorf(webintel.ESTORAGE, "reading session: %v", err)
	}

	var session webintel.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, webintel.Errorf(webintel.ESTORAGE, "parsing session %s: %v", id, err)
	}

	return &session, nil
}

// SessionExists reports whether a persisted record exists for id.
func (s *Storage) SessionExists(ctx context.Context, id string) (bool, error) {
	path := filepath.Join(s.sessionsDir, id+".json")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, webintel.Errorf(webintel.ESTORAGE, "checking session: %v", err)
	}
	return true, nil
}
