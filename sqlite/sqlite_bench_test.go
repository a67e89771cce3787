package sqlite_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fwojciec/webintel"
	"github.com/fwojciec/webintel/sqlite"
)

// BenchmarkWALMode compares write performance between WAL and rollback
// journal modes under a crawl workload: saving many multi-page results.
func BenchmarkWALMode(b *testing.B) {
	b.Run("rollback_journal", func(b *testing.B) {
		benchmarkCrawlSaves(b, false)
	})

	b.Run("wal_mode", func(b *testing.B) {
		benchmarkCrawlSaves(b, true)
	})
}

func benchmarkCrawlSaves(b *testing.B, useWAL bool) {
	b.Helper()

	dbPath := filepath.Join(b.TempDir(), "bench.db")
	db := sqlite.NewDB(dbPath)
	require.NoError(b, db.Open())

	// Open enables WAL by default for file databases, so set the mode
	// explicitly in both directions.
	mode := "DELETE"
	if useWAL {
		mode = "WAL"
	}
	_, err := db.ExecContext(context.Background(), "PRAGMA journal_mode = "+mode)
	require.NoError(b, err)

	defer func() {
		db.Close()
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}()

	store := sqlite.NewStorage(db)
	ctx := context.Background()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := store.SaveCrawlResult(ctx, benchResult(i, 20), webintel.FormatJSON); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkBulkSave measures persisting one large crawl into a fresh
// database, the dominant write pattern for this tool.
func BenchmarkBulkSave(b *testing.B) {
	const pagesPerCrawl = 100

	for i := 0; i < b.N; i++ {
		b.StopTimer()

		dbPath := filepath.Join(b.TempDir(), fmt.Sprintf("bench%d.db", i))
		db := sqlite.NewDB(dbPath)
		require.NoError(b, db.Open())

		store := sqlite.NewStorage(db)
		ctx := context.Background()
		result := benchResult(i, pagesPerCrawl)

		b.StartTimer()

		if _, err := store.SaveCrawlResult(ctx, result, webintel.FormatJSON); err != nil {
			b.Fatal(err)
		}

		b.StopTimer()
		db.Close()
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}
}

// benchResult builds a crawl result with n pages under a per-iteration
// host, so each save gets a distinct result id.
func benchResult(iteration, n int) *webintel.CrawlResult {
	started := time.Now().Add(-time.Minute)
	result := &webintel.CrawlResult{
		SourceURL:   fmt.Sprintf("https://site%d.example.com/docs", iteration),
		StartedAt:   started,
		CompletedAt: started.Add(30 * time.Second),
		Success:     true,
		TotalPages:  n,
		CrawlDepth:  2,
	}
	for j := 0; j < n; j++ {
		result.Pages = append(result.Pages, webintel.PageResult{
			URL:        fmt.Sprintf("https://site%d.example.com/docs/page%d", iteration, j),
			Title:      fmt.Sprintf("Page %d", j),
			Content:    fmt.Sprintf("# Page %d\n\nThis is the content of page %d with some additional text to make it more realistic. Lorem ipsum dolor sit amet, consectetur adipiscing elit.", j, j),
			StatusCode: 200,
			CrawledAt:  started.Add(time.Duration(j) * time.Second),
		})
	}
	return result
}
