package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/webintel"
	"github.com/fwojciec/webintel/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	urlFilter, err := webintel.CompileURLFilter(c.Filter, nil)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webintel.ErrorMessage(err))
		return err
	}

	pipeline := &crawl.Pipeline{Engine: deps.Engine}

	progress := func(message string, index, total int) {
		fmt.Fprintf(deps.Stdout, "  %s\n", message)
	}

	fmt.Fprintf(deps.Stdout, "Crawling %s (depth %d)\n", c.URL, c.Depth)

	result, err := pipeline.Crawl(deps.Ctx, c.URL, webintel.CrawlOptions{
		Depth:    c.Depth,
		MaxPages: c.MaxPages,
		Filter:   urlFilter,
		Progress: progress,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webintel.ErrorMessage(err))
		return err
	}

	id, err := deps.Storage.SaveCrawlResult(deps.Ctx, result, webintel.Format(c.Format))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webintel.ErrorMessage(err))
		return err
	}

	var contentBytes int
	for _, page := range result.Pages {
		contentBytes += len(page.Content)
	}

	fmt.Fprintf(deps.Stdout, "Crawled %d pages in %s (%d failed, %.1f%% success, %s)\n",
		result.TotalPages, result.Duration().Round(time.Millisecond),
		result.FailedPages, result.SuccessRate()*100, crawl.FormatBytes(contentBytes))
	fmt.Fprintf(deps.Stdout, "Saved as %s\n", id)
	return nil
}
