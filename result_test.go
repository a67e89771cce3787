package webintel_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fwojciec/webintel"
)

func TestCrawlResult_CombinedContent(t *testing.T) {
	t.Parallel()

	result := &webintel.CrawlResult{
		Pages: []webintel.PageResult{
			{URL: "https://example.com", Content: "Home page."},
			{URL: "https://example.com/about", Content: "About page."},
		},
	}

	combined := result.CombinedContent()

	assert.Equal(t, "--- From: https://example.com ---\nHome page.\n\n--- From: https://example.com/about ---\nAbout page.", combined)
}

func TestCrawlResult_CombinedContent_Empty(t *testing.T) {
	t.Parallel()

	result := &webintel.CrawlResult{}

	assert.Empty(t, result.CombinedContent())
}

func TestCrawlResult_SuccessRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		total  int
		failed int
		want   float64
	}{
		{name: "all succeeded", total: 4, failed: 0, want: 1.0},
		{name: "half failed", total: 4, failed: 2, want: 0.5},
		{name: "no pages", total: 0, failed: 0, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := &webintel.CrawlResult{TotalPages: tt.total, FailedPages: tt.failed}

			assert.InDelta(t, tt.want, result.SuccessRate(), 1e-9)
		})
	}
}

func TestCrawlResult_AllURLs(t *testing.T) {
	t.Parallel()

	result := &webintel.CrawlResult{
		Pages: []webintel.PageResult{
			{URL: "https://example.com"},
			{URL: "https://example.com/docs"},
		},
	}

	assert.Equal(t, []string{"https://example.com", "https://example.com/docs"}, result.AllURLs())
}

func TestCrawlResult_Duration(t *testing.T) {
	t.Parallel()

	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	result := &webintel.CrawlResult{
		StartedAt:   started,
		CompletedAt: started.Add(90 * time.Second),
	}

	assert.Equal(t, 90*time.Second, result.Duration())
}

func TestCrawlResult_Duration_NotCompleted(t *testing.T) {
	t.Parallel()

	result := &webintel.CrawlResult{StartedAt: time.Now()}

	assert.Zero(t, result.Duration())
}
