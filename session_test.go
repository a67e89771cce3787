package webintel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/webintel"
)

func TestSession_AddMessage(t *testing.T) {
	t.Parallel()

	session := webintel.NewSession("s1")
	before := session.UpdatedAt

	session.AddMessage(webintel.RoleUser, "What is this?", nil)
	session.AddMessage(webintel.RoleAssistant, "A test.", map[string]any{"model": "test-model"})

	require.Len(t, session.Messages, 2)
	assert.Equal(t, webintel.RoleUser, session.Messages[0].Role)
	assert.Equal(t, "What is this?", session.Messages[0].Content)
	assert.Equal(t, webintel.RoleAssistant, session.Messages[1].Role)
	assert.Equal(t, "A test.", session.Messages[1].Content)
	assert.Equal(t, "test-model", session.Messages[1].Metadata["model"])
	assert.False(t, session.Messages[0].Timestamp.IsZero())
	assert.False(t, session.UpdatedAt.Before(before), "UpdatedAt should advance")
}

func TestSession_RecentMessages(t *testing.T) {
	t.Parallel()

	session := webintel.NewSession("s1")
	session.AddMessage(webintel.RoleUser, "one", nil)
	session.AddMessage(webintel.RoleAssistant, "two", nil)
	session.AddMessage(webintel.RoleUser, "three", nil)

	t.Run("window smaller than transcript", func(t *testing.T) {
		t.Parallel()

		turns := session.RecentMessages(2)

		assert.Equal(t, []webintel.Turn{
			{Role: webintel.RoleAssistant, Content: "two"},
			{Role: webintel.RoleUser, Content: "three"},
		}, turns)
	})

	t.Run("window larger than transcript", func(t *testing.T) {
		t.Parallel()

		turns := session.RecentMessages(10)

		assert.Len(t, turns, 3)
		assert.Equal(t, "one", turns[0].Content)
	})

	t.Run("does not mutate the session", func(t *testing.T) {
		t.Parallel()

		_ = session.RecentMessages(1)

		assert.Len(t, session.Messages, 3)
	})

	t.Run("zero window", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, session.RecentMessages(0))
	})
}

func TestNewSession(t *testing.T) {
	t.Parallel()

	session := webintel.NewSession("s1")

	assert.Equal(t, "s1", session.ID)
	assert.Empty(t, session.Messages)
	assert.False(t, session.CreatedAt.IsZero())
	assert.Equal(t, session.CreatedAt, session.UpdatedAt)
}
