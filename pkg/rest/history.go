package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wonguwon/jwt-login/pkg/model"
)

// HistoryLoader fetches the persisted message backlog for a room.
type HistoryLoader struct {
	c *Client
}

func NewHistoryLoader(c *Client) *HistoryLoader {
	return &HistoryLoader{c: c}
}

type historyPayload struct {
	RoomID      int64  `json:"roomId"`
	SenderEmail string `json:"senderEmail"`
	Message     string `json:"message"`
}

// FetchHistory returns the full backlog of a room, oldest first, as one
// snapshot at call time. The payload carries no timestamps; slice order is
// the ordering. On failure nothing partial is returned.
func (h *HistoryLoader) FetchHistory(ctx context.Context, roomID int64) ([]model.ChatMessage, error) {
	var payload []historyPayload
	if err := h.c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/chat/history/%d", roomID), &payload); err != nil {
		return nil, err
	}
	messages := make([]model.ChatMessage, 0, len(payload))
	for _, p := range payload {
		id := p.RoomID
		if id == 0 {
			id = roomID
		}
		messages = append(messages, model.ChatMessage{
			RoomID:   id,
			SenderID: p.SenderEmail,
			Body:     p.Message,
		})
	}
	return messages, nil
}
