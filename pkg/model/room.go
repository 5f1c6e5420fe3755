package model

type RoomKind string

const (
	RoomPrivate RoomKind = "private"
	RoomGroup   RoomKind = "group"
)

// ChatRoom is a channel of messages, either a private 1:1 room or a group
// room. Rooms are created server-side; the only field mutated locally is
// UnreadCount, which drops to zero once the room has been read.
type ChatRoom struct {
	ID          int64    `json:"roomId"`
	Name        string   `json:"roomName"`
	Kind        RoomKind `json:"kind"`
	UnreadCount int      `json:"unreadCount"`
}

func (r ChatRoom) IsGroup() bool {
	return r.Kind == RoomGroup
}
