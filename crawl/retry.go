package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/webintel"
)

// DefaultRetryDelays returns the backoff delays between fetch attempts:
// 1s, 2s, 4s. Three retries after the initial attempt.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// fetchWithRetry fetches url through f, retrying failed attempts with the
// given backoff delays. An empty delays slice means a single attempt.
// Context cancellation aborts both the fetch and the backoff sleep.
func fetchWithRetry(ctx context.Context, f webintel.Fetcher, url string, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := range maxAttempts {
		html, err := f.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}
