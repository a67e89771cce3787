package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/webintel"
	main "github.com/fwojciec/webintel/cmd/webintel"
	"github.com/fwojciec/webintel/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testContext returns a background context for tests.
func testContext() context.Context {
	return context.Background()
}

func TestMain_Run_NoCommand(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DataDir = t.TempDir()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(testContext(), []string{}, stdout, stderr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestMain_Run_RegistryLookups(t *testing.T) {
	t.Parallel()

	t.Run("unknown engine lists registered engines", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.DataDir = t.TempDir()
		m.Storage = &mock.Storage{}

		err := m.Run(testContext(), []string{"crawl", "https://example.com", "--engine", "warp"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Equal(t, webintel.EINVALID, webintel.ErrorCode(err))
		assert.Contains(t, webintel.ErrorMessage(err), `unknown engine "warp"`)
		assert.Contains(t, webintel.ErrorMessage(err), "colly, http, rod")
	})

	t.Run("unknown extractor lists registered extractors", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.DataDir = t.TempDir()
		m.Storage = &mock.Storage{}

		err := m.Run(testContext(), []string{"crawl", "https://example.com", "--extractor", "boilerpipe"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Equal(t, webintel.EINVALID, webintel.ErrorCode(err))
		assert.Contains(t, webintel.ErrorMessage(err), `unknown extractor "boilerpipe"`)
		assert.Contains(t, webintel.ErrorMessage(err), "readability, trafilatura")
	})

	t.Run("unknown storage lists registered backends", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.DataDir = t.TempDir()

		err := m.Run(testContext(), []string{"crawl", "https://example.com", "--storage", "s3"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Equal(t, webintel.EINVALID, webintel.ErrorCode(err))
		assert.Contains(t, webintel.ErrorMessage(err), `unknown storage "s3"`)
		assert.Contains(t, webintel.ErrorMessage(err), "file, sqlite")
	})

	t.Run("unknown agent lists registered agents", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.DataDir = t.TempDir()
		m.Storage = &mock.Storage{}

		err := m.Run(testContext(), []string{"ask", "question", "--source", "data/example.md", "--agent", "bedrock"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Equal(t, webintel.EINVALID, webintel.ErrorCode(err))
		assert.Contains(t, webintel.ErrorMessage(err), `unknown agent "bedrock"`)
		assert.Contains(t, webintel.ErrorMessage(err), "gemini, ollama")
	})
}
