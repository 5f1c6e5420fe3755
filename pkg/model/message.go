package model

import "time"

// ChatMessage is one delivered message. Immutable once created; the message
// store of the room it belongs to is its only owner. SentAt is zero when the
// server does not carry a timestamp, in which case arrival order rules.
type ChatMessage struct {
	RoomID   int64     `json:"roomId"`
	SenderID string    `json:"senderId"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sentAt"`
}

// MessageKey identifies a delivered message for de-duplication. The wire
// format carries no server-issued message id, so the composite of room,
// sender, timestamp and body has to stand in for one.
type MessageKey struct {
	RoomID   int64
	SenderID string
	SentAt   int64
	Body     string
}

func (m ChatMessage) Key() MessageKey {
	var ts int64
	if !m.SentAt.IsZero() {
		ts = m.SentAt.UnixNano()
	}
	return MessageKey{
		RoomID:   m.RoomID,
		SenderID: m.SenderID,
		SentAt:   ts,
		Body:     m.Body,
	}
}
