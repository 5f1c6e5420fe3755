package rest

import (
	"context"
	"fmt"
	"net/http"
)

// ReadTracker records that a room's backlog has been consumed, resetting
// its unread count server-side. Repeated calls are harmless.
type ReadTracker struct {
	c *Client
}

func NewReadTracker(c *Client) *ReadTracker {
	return &ReadTracker{c: c}
}

func (r *ReadTracker) MarkRead(ctx context.Context, roomID int64) error {
	return r.c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/chat/room/%d/read", roomID), nil)
}
