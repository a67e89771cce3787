package webintel_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fwojciec/webintel"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := webintel.Errorf(webintel.ENOTFOUND, "crawl result %q not found", "test")

	assert.Equal(t, webintel.ENOTFOUND, webintel.ErrorCode(err))
	assert.Equal(t, "crawl result \"test\" not found", webintel.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, webintel.ErrorCode(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", webintel.Errorf(webintel.ECRAWLER, "engine failed"))

	assert.Equal(t, webintel.ECRAWLER, webintel.ErrorCode(err))
	assert.Equal(t, "engine failed", webintel.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("plain error")

	assert.Equal(t, webintel.EINTERNAL, webintel.ErrorCode(err))
	assert.Equal(t, "Internal error.", webintel.ErrorMessage(err))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, webintel.ErrorMessage(nil))
}
