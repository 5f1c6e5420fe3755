package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonguwon/jwt-login/pkg/chaterr"
)

func TestFetchHistory(t *testing.T) {
	t.Run("preserves order and fills the room id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/chat/history/42", r.URL.Path)
			w.Write([]byte(`[
				{"message": "hi", "senderEmail": "a@x.com"},
				{"message": "hello", "senderEmail": "b@x.com"}
			]`))
		}))
		t.Cleanup(srv.Close)

		loader := NewHistoryLoader(NewClient(srv.URL, "tok", nil))
		history, err := loader.FetchHistory(context.Background(), 42)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "hi", history[0].Body)
		assert.Equal(t, "a@x.com", history[0].SenderID)
		assert.Equal(t, int64(42), history[0].RoomID)
		assert.Equal(t, "hello", history[1].Body)
		assert.True(t, history[0].SentAt.IsZero())
	})

	t.Run("failure yields nothing partial", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		loader := NewHistoryLoader(NewClient(srv.URL, "tok", nil))
		history, err := loader.FetchHistory(context.Background(), 42)
		assert.ErrorIs(t, err, chaterr.ErrNetwork)
		assert.Nil(t, history)
	})

	t.Run("unreachable server", func(t *testing.T) {
		loader := NewHistoryLoader(NewClient("http://127.0.0.1:1", "tok", nil))
		_, err := loader.FetchHistory(context.Background(), 42)
		assert.ErrorIs(t, err, chaterr.ErrNetwork)
	})
}

func TestMarkRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/chat/room/42/read", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	tracker := NewReadTracker(NewClient(srv.URL, "tok", nil))
	assert.NoError(t, tracker.MarkRead(context.Background(), 42))
	// Idempotent: a second call is just as fine.
	assert.NoError(t, tracker.MarkRead(context.Background(), 42))
}
