// Package crawl provides website crawling orchestration. It coordinates an
// engine's page stream into a bounded, budgeted traversal and assembles the
// final crawl result.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/fwojciec/webintel"
)

// DefaultTimeout is the per-request budget unit. A crawl's total
// wall-clock budget is the timeout multiplied by the crawl depth.
const DefaultTimeout = 30 * time.Second

// Pipeline runs bounded-depth crawls through an Engine and normalizes the
// yielded pages into a CrawlResult. Page processing is sequential with
// respect to result aggregation; any fetch concurrency stays inside the
// engine.
type Pipeline struct {
	Engine webintel.Engine

	// Timeout is the per-request budget unit. Zero means DefaultTimeout.
	Timeout time.Duration
}

// ValidateURL reports whether raw parses with scheme http or https and a
// non-empty host.
func ValidateURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Crawl crawls sourceURL to the configured depth and returns the assembled
// result. The whole traversal shares one wall-clock budget of
// Timeout * depth; exceeding it fails the crawl with no partial result.
// Individual page failures are counted and tolerated. Nothing is retried
// at this layer.
func (p *Pipeline) Crawl(ctx context.Context, sourceURL string, opts webintel.CrawlOptions) (*webintel.CrawlResult, error) {
	if !ValidateURL(sourceURL) {
		return nil, webintel.Errorf(webintel.ECRAWLER, "invalid URL: %s", sourceURL)
	}

	depth := opts.Depth
	if depth < 1 {
		depth = 1
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	budget := timeout * time.Duration(depth)

	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	startedAt := time.Now()

	if opts.Progress != nil {
		opts.Progress("Starting crawl...", 0, 0)
	}

	stream, err := p.Engine.Crawl(ctx, sourceURL, webintel.EngineOptions{
		Depth:    depth,
		MaxPages: opts.MaxPages,
		Filter:   opts.Filter,
	})
	if err != nil {
		return nil, crawlError(err, budget)
	}
	defer stream.Close()

	var pages []webintel.PageResult
	var failed int
	index := 0
	for {
		raw, err := stream.Next(ctx)
		if err != nil {
			return nil, crawlError(err, budget)
		}
		if raw == nil {
			break
		}
		index++

		page, err := ExtractPage(raw)
		if err != nil {
			failed++
			if opts.Progress != nil {
				opts.Progress(fmt.Sprintf("Failed page %d: %s", index, raw.URL), index, 0)
			}
			continue
		}
		pages = append(pages, *page)
		if opts.Progress != nil {
			opts.Progress(fmt.Sprintf("Processed page %d: %s", index, page.URL), index, 0)
		}

		// Soft stop: pages already in flight inside the engine may
		// still complete, but nothing more is consumed.
		if opts.MaxPages > 0 && len(pages) >= opts.MaxPages {
			break
		}
	}

	completedAt := time.Now()

	return &webintel.CrawlResult{
		SourceURL:   sourceURL,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Success:     len(pages) > 0,
		TotalPages:  len(pages),
		FailedPages: failed,
		CrawlDepth:  depth,
		Metadata: map[string]any{
			"engine":           p.Engine.Name(),
			"duration_seconds": completedAt.Sub(startedAt).Seconds(),
			"max_pages":        opts.MaxPages,
		},
		Pages: pages,
	}, nil
}

// ExtractPage normalizes a raw engine page into a PageResult. Content is
// chosen by decreasing preference: markdown, cleaned HTML, raw HTML. A
// page with no content in any form fails with ECRAWLER.
func ExtractPage(raw *webintel.RawPage) (*webintel.PageResult, error) {
	content := raw.Markdown
	if content == "" {
		content = raw.CleanedHTML
	}
	if content == "" {
		content = raw.HTML
	}
	if content == "" {
		return nil, webintel.Errorf(webintel.ECRAWLER, "no content extracted from %s", raw.URL)
	}

	return &webintel.PageResult{
		URL:        raw.URL,
		Title:      raw.Title,
		Content:    content,
		StatusCode: raw.StatusCode,
		CrawledAt:  time.Now(),
		Metadata: map[string]any{
			"has_markdown":   raw.Markdown != "",
			"content_length": len(content),
		},
	}, nil
}

// crawlError maps a traversal failure to the crawl's error. Budget
// exhaustion and cancellation surface as a timeout; application errors
// pass through unchanged; anything else is wrapped with its cause.
func crawlError(err error, budget time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return webintel.Errorf(webintel.ECRAWLER, "crawl timed out after %s", budget)
	}
	if errors.Is(err, context.Canceled) {
		return webintel.Errorf(webintel.ECRAWLER, "crawl canceled")
	}
	var e *webintel.Error
	if errors.As(err, &e) {
		return err
	}
	return webintel.Errorf(webintel.ECRAWLER, "crawl failed: %v", err)
}
