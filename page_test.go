package webintel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/webintel"
)

var _ webintel.PageStream = (*webintel.ChannelStream)(nil)

func TestChannelStream_YieldsInOrder(t *testing.T) {
	t.Parallel()

	stream := webintel.NewChannelStream(2)
	go func() {
		stream.Send(&webintel.RawPage{URL: "https://example.com/1"})
		stream.Send(&webintel.RawPage{URL: "https://example.com/2"})
		stream.Finish()
	}()

	ctx := context.Background()

	first, err := stream.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "https://example.com/1", first.URL)

	second, err := stream.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "https://example.com/2", second.URL)

	page, err := stream.Next(ctx)
	assert.NoError(t, err)
	assert.Nil(t, page, "exhausted stream yields (nil, nil)")
}

func TestChannelStream_ProducerError(t *testing.T) {
	t.Parallel()

	stream := webintel.NewChannelStream(1)
	go func() {
		stream.Send(&webintel.RawPage{URL: "https://example.com/1"})
		stream.Fail(webintel.Errorf(webintel.ECRAWLER, "engine failed"))
		stream.Finish()
	}()

	ctx := context.Background()

	page, err := stream.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, page)

	_, err = stream.Next(ctx)
	assert.Equal(t, webintel.ECRAWLER, webintel.ErrorCode(err))
}

func TestChannelStream_CloseUnblocksProducer(t *testing.T) {
	t.Parallel()

	stream := webintel.NewChannelStream(0)
	delivered := make(chan bool, 1)
	go func() {
		// Unbuffered channel with no consumer; Send blocks until Close.
		delivered <- stream.Send(&webintel.RawPage{URL: "https://example.com/1"})
	}()

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close(), "Close is idempotent")

	assert.False(t, <-delivered, "Send reports the stream was closed")
}

func TestChannelStream_NextAfterClose(t *testing.T) {
	t.Parallel()

	stream := webintel.NewChannelStream(0)
	require.NoError(t, stream.Close())

	page, err := stream.Next(context.Background())

	assert.NoError(t, err)
	assert.Nil(t, page)
}

func TestChannelStream_ContextCanceled(t *testing.T) {
	t.Parallel()

	stream := webintel.NewChannelStream(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stream.Next(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
