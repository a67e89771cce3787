package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/webintel"
	"github.com/fwojciec/webintel/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestResult() *webintel.CrawlResult {
	started := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	return &webintel.CrawlResult{
		SourceURL:   "https://acme.dev/blog",
		StartedAt:   started,
		CompletedAt: started.Add(42 * time.Second),
		Success:     true,
		TotalPages:  2,
		FailedPages: 1,
		CrawlDepth:  1,
		Metadata:    map[string]any{"engine": "colly"},
		Pages: []webintel.PageResult{
			{
				URL:        "https://acme.dev/blog",
				Title:      "Blog",
				Content:    "# Blog\n\nLatest posts.",
				StatusCode: 200,
				CrawledAt:  started.Add(5 * time.Second),
				Metadata:   map[string]any{"has_markdown": true},
			},
			{
				URL:        "https://acme.dev/blog/launch",
				Title:      "Launch",
				Content:    "# Launch\n\nWe shipped.",
				StatusCode: 200,
				CrawledAt:  started.Add(9 * time.Second),
				Metadata:   map[string]any{"has_markdown": true},
			},
		},
	}
}

func TestStorage_SaveCrawlResult_RoundTrip(t *testing.T) {
	t.Parallel()

	store := sqlite.NewStorage(newTestDB(t))
	original := newTestResult()

	id, err := store.SaveCrawlResult(context.Background(), original, webintel.FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, id, "acme_dev_")

	loaded, err := store.LoadCrawlResult(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, original.SourceURL, loaded.SourceURL)
	assert.Equal(t, original.TotalPages, loaded.TotalPages)
	assert.Equal(t, original.FailedPages, loaded.FailedPages)
	assert.Equal(t, original.CrawlDepth, loaded.CrawlDepth)
	assert.Equal(t, "colly", loaded.Metadata["engine"])
	assert.WithinDuration(t, original.StartedAt, loaded.StartedAt, time.Second)
	assert.WithinDuration(t, original.CompletedAt, loaded.CompletedAt, time.Second)
	assert.True(t, loaded.Success, "loaded result with pages reports success")

	require.Len(t, loaded.Pages, 2)
	assert.Equal(t, "https://acme.dev/blog", loaded.Pages[0].URL)
	assert.Equal(t, "https://acme.dev/blog/launch", loaded.Pages[1].URL)
	assert.Equal(t, "# Launch\n\nWe shipped.", loaded.Pages[1].Content)
	assert.Equal(t, 200, loaded.Pages[1].StatusCode)
	assert.Equal(t, true, loaded.Pages[1].Metadata["has_markdown"])
	assert.WithinDuration(t, original.Pages[1].CrawledAt, loaded.Pages[1].CrawledAt, time.Second)
}

func TestStorage_SaveCrawlResult_MarkdownUnsupported(t *testing.T) {
	t.Parallel()

	store := sqlite.NewStorage(newTestDB(t))

	_, err := store.SaveCrawlResult(context.Background(), newTestResult(), webintel.FormatMarkdown)
	require.Error(t, err)
	assert.Equal(t, webintel.EINVALID, webintel.ErrorCode(err))
	assert.Contains(t, webintel.ErrorMessage(err), "file storage")
}

func TestStorage_SaveCrawlResult_UnknownFormat(t *testing.T) {
	t.Parallel()

	store := sqlite.NewStorage(newTestDB(t))

	_, err := store.SaveCrawlResult(context.Background(), newTestResult(), webintel.Format("yaml"))
	require.Error(t, err)
	assert.Equal(t, webintel.EINVALID, webintel.ErrorCode(err))
}

func TestStorage_SaveCrawlResult_HashesPageContent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	store := sqlite.NewStorage(db)

	_, err := store.SaveCrawlResult(context.Background(), newTestResult(), webintel.FormatJSON)
	require.NoError(t, err)

	var hash string
	err = db.QueryRowContext(context.Background(),
		"SELECT content_hash FROM pages WHERE url = ?", "https://acme.dev/blog").Scan(&hash)
	require.NoError(t, err)
	assert.Len(t, hash, 16, "xxhash hex digest is 16 characters")
}

func TestStorage_LoadCrawlResult_NotFound(t *testing.T) {
	t.Parallel()

	store := sqlite.NewStorage(newTestDB(t))

	_, err := store.LoadCrawlResult(context.Background(), "missing_20250101_000000")
	require.Error(t, err)
	assert.Equal(t, webintel.ESTORAGE, webintel.ErrorCode(err))
	assert.Contains(t, webintel.ErrorMessage(err), "not found")
}

func TestStorage_LoadContent(t *testing.T) {
	t.Parallel()

	t.Run("reads file content", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewStorage(newTestDB(t))

		path := filepath.Join(t.TempDir(), "notes.md")
		require.NoError(t, os.WriteFile(path, []byte("# Notes\n\nRemember this."), 0644))

		content, err := store.LoadContent(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "# Notes\n\nRemember this.", content)
	})

	t.Run("missing path returns ESTORAGE", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewStorage(newTestDB(t))

		_, err := store.LoadContent(context.Background(), filepath.Join(t.TempDir(), "nope.md"))
		require.Error(t, err)
		assert.Equal(t, webintel.ESTORAGE, webintel.ErrorCode(err))
	})
}

func TestStorage_Sessions(t *testing.T) {
	t.Parallel()

	t.Run("save and load round trip", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewStorage(newTestDB(t))

		session := webintel.NewSession("session_20250314_103000")
		session.ContextSource = "acme_dev_20250314_103000"
		session.AddMessage(webintel.RoleUser, "What did they ship?", nil)
		session.AddMessage(webintel.RoleAssistant, "A launch post.", map[string]any{"model": "test"})

		require.NoError(t, store.SaveSession(context.Background(), session))

		loaded, err := store.LoadSession(context.Background(), session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, loaded.ID)
		assert.Equal(t, session.ContextSource, loaded.ContextSource)
		assert.WithinDuration(t, session.CreatedAt, loaded.CreatedAt, time.Second)
		require.Len(t, loaded.Messages, 2)
		assert.Equal(t, webintel.RoleUser, loaded.Messages[0].Role)
		assert.Equal(t, "What did they ship?", loaded.Messages[0].Content)
		assert.Equal(t, "A launch post.", loaded.Messages[1].Content)
		assert.Equal(t, "test", loaded.Messages[1].Metadata["model"])
	})

	t.Run("resave replaces messages without duplication", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewStorage(newTestDB(t))

		session := webintel.NewSession("s1")
		session.AddMessage(webintel.RoleUser, "first", nil)
		require.NoError(t, store.SaveSession(context.Background(), session))

		session.AddMessage(webintel.RoleAssistant, "second", nil)
		session.AddMessage(webintel.RoleUser, "third", nil)
		require.NoError(t, store.SaveSession(context.Background(), session))

		loaded, err := store.LoadSession(context.Background(), "s1")
		require.NoError(t, err)
		require.Len(t, loaded.Messages, 3)
		assert.Equal(t, "first", loaded.Messages[0].Content)
		assert.Equal(t, "third", loaded.Messages[2].Content)
	})

	t.Run("missing session loads fresh", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewStorage(newTestDB(t))

		session, err := store.LoadSession(context.Background(), "never_saved")
		require.NoError(t, err)
		assert.Equal(t, "never_saved", session.ID)
		assert.Empty(t, session.Messages)
	})

	t.Run("exists reflects persistence", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewStorage(newTestDB(t))

		exists, err := store.SessionExists(context.Background(), "s1")
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, store.SaveSession(context.Background(), webintel.NewSession("s1")))

		exists, err = store.SessionExists(context.Background(), "s1")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
