package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonguwon/jwt-login/pkg/model"
)

func msg(room int64, sender, body string) model.ChatMessage {
	return model.ChatMessage{RoomID: room, SenderID: sender, Body: body}
}

func bodies(s *MessageStore) []string {
	var out []string
	for _, m := range s.Messages() {
		out = append(out, m.Body)
	}
	return out
}

func TestMessageStore_AppendIsIdempotent(t *testing.T) {
	s := NewMessageStore()
	require.True(t, s.Append(msg(42, "a@x.com", "hi")))
	for i := 0; i < 5; i++ {
		assert.False(t, s.Append(msg(42, "a@x.com", "hi")))
	}
	assert.Equal(t, 1, s.Len())
}

func TestMessageStore_SeedThenLive(t *testing.T) {
	s := NewMessageStore()
	s.Seed([]model.ChatMessage{
		msg(42, "a@x.com", "hi"),
		msg(42, "b@x.com", "hello"),
	})
	s.Append(msg(42, "b@x.com", "yo"))
	s.Append(msg(42, "a@x.com", "sup"))

	assert.Equal(t, []string{"hi", "hello", "yo", "sup"}, bodies(s))
}

func TestMessageStore_LiveDuplicateOfHistoryDropped(t *testing.T) {
	s := NewMessageStore()
	s.Seed([]model.ChatMessage{msg(42, "a@x.com", "hi")})

	assert.False(t, s.Append(msg(42, "a@x.com", "hi")))
	assert.Equal(t, []string{"hi"}, bodies(s))
}

func TestMessageStore_SeedReplaces(t *testing.T) {
	s := NewMessageStore()
	s.Seed([]model.ChatMessage{msg(1, "a@x.com", "old")})
	s.Seed([]model.ChatMessage{msg(2, "b@x.com", "new")})

	assert.Equal(t, []string{"new"}, bodies(s))
	// The old key is forgotten with the old sequence.
	assert.True(t, s.Append(msg(1, "a@x.com", "old")))
}

func TestMessageStore_SeedCollapsesRepeats(t *testing.T) {
	s := NewMessageStore()
	s.Seed([]model.ChatMessage{
		msg(42, "a@x.com", "hi"),
		msg(42, "a@x.com", "hi"),
	})
	assert.Equal(t, 1, s.Len())
}

func TestMessageStore_TimestampOrdering(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stamped := func(body string, offset time.Duration) model.ChatMessage {
		m := msg(42, "a@x.com", body)
		m.SentAt = base.Add(offset)
		return m
	}

	t.Run("late arrival with earlier stamp is reordered", func(t *testing.T) {
		s := NewMessageStore()
		s.Append(stamped("second", time.Minute))
		s.Append(stamped("first", 0))
		assert.Equal(t, []string{"first", "second"}, bodies(s))
	})

	t.Run("equal stamps keep arrival order", func(t *testing.T) {
		s := NewMessageStore()
		s.Append(stamped("a", 0))
		m := msg(42, "b@x.com", "b")
		m.SentAt = base
		s.Append(m)
		assert.Equal(t, []string{"a", "b"}, bodies(s))
	})

	t.Run("stamped live never sorts beneath unstamped history", func(t *testing.T) {
		s := NewMessageStore()
		s.Seed([]model.ChatMessage{msg(42, "a@x.com", "backlog")})
		s.Append(stamped("live", 0))
		assert.Equal(t, []string{"backlog", "live"}, bodies(s))
	})
}

func TestMessageStore_Clear(t *testing.T) {
	s := NewMessageStore()
	s.Seed([]model.ChatMessage{msg(42, "a@x.com", "hi")})
	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Messages())
}

func TestMessageStore_MessagesIsASnapshot(t *testing.T) {
	s := NewMessageStore()
	s.Append(msg(42, "a@x.com", "hi"))
	snapshot := s.Messages()
	s.Append(msg(42, "b@x.com", "yo"))

	assert.Len(t, snapshot, 1)
	assert.Len(t, s.Messages(), 2)
}
