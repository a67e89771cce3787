package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/webintel/mock"
	webslog "github.com/fwojciec/webintel/slog"
)

func TestLoggingFetcher_LogsSuccessfulFetch(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			return "<html><body>Pricing</body></html>", nil
		},
	}

	fetcher := webslog.NewLoggingFetcher(inner, slog.New(slog.NewTextHandler(&buf, nil)))
	html, err := fetcher.Fetch(context.Background(), "https://acme.dev/pricing")

	require.NoError(t, err)
	assert.Equal(t, "<html><body>Pricing</body></html>", html)

	logged := buf.String()
	assert.Contains(t, logged, "msg=fetch")
	assert.Contains(t, logged, "url=https://acme.dev/pricing")
	assert.Contains(t, logged, "bytes=33")
	assert.Contains(t, logged, "duration=")
}

func TestLoggingFetcher_LogsFetchError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			return "", errors.New("connection refused")
		},
	}

	fetcher := webslog.NewLoggingFetcher(inner, slog.New(slog.NewTextHandler(&buf, nil)))
	_, err := fetcher.Fetch(context.Background(), "https://acme.dev/pricing")

	require.Error(t, err)
	assert.Contains(t, buf.String(), `err="connection refused"`)
}

func TestLoggingFetcher_CloseDelegates(t *testing.T) {
	t.Parallel()

	closed := false
	inner := &mock.Fetcher{
		CloseFn: func() error {
			closed = true
			return nil
		},
	}

	fetcher := webslog.NewLoggingFetcher(inner, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	require.NoError(t, fetcher.Close())
	assert.True(t, closed)
}
