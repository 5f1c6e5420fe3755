package model

import "strings"

// Frame is the JSON shape exchanged on the live connection, one message per
// frame, identical in both directions.
type Frame struct {
	RoomID      int64  `json:"roomId"`
	SenderEmail string `json:"senderEmail"`
	Message     string `json:"message"`
}

// Valid reports whether a decoded inbound frame carries everything a
// ChatMessage needs. Invalid frames are dropped by the connection layer.
func (f Frame) Valid() bool {
	return f.RoomID > 0 && f.SenderEmail != "" && strings.TrimSpace(f.Message) != ""
}

// ToMessage converts an inbound frame. The wire carries no timestamp, so
// SentAt stays zero and the store falls back to arrival order.
func (f Frame) ToMessage() ChatMessage {
	return ChatMessage{
		RoomID:   f.RoomID,
		SenderID: f.SenderEmail,
		Body:     f.Message,
	}
}
