package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wonguwon/jwt-login/pkg/chaterr"
	"github.com/wonguwon/jwt-login/pkg/model"
)

// Directory lists, creates, joins and leaves chat rooms.
type Directory struct {
	c *Client
}

func NewDirectory(c *Client) *Directory {
	return &Directory{c: c}
}

// roomPayload covers both room-list responses: the group list carries only
// roomId and roomName, my/rooms adds isGroupChat ("Y"/"N") and unReadCount.
type roomPayload struct {
	RoomID      int64  `json:"roomId"`
	RoomName    string `json:"roomName"`
	IsGroupChat string `json:"isGroupChat"`
	UnreadCount int    `json:"unReadCount"`
}

// ListGroupRooms returns every joinable group room. A failure means the
// list is unavailable, not empty.
func (d *Directory) ListGroupRooms(ctx context.Context) ([]model.ChatRoom, error) {
	var payload []roomPayload
	if err := d.c.do(ctx, http.MethodGet, "/v1/chat/room/group/list", &payload); err != nil {
		return nil, err
	}
	rooms := make([]model.ChatRoom, 0, len(payload))
	for _, p := range payload {
		rooms = append(rooms, model.ChatRoom{
			ID:   p.RoomID,
			Name: p.RoomName,
			Kind: model.RoomGroup,
		})
	}
	return rooms, nil
}

// ListMyRooms returns the rooms the caller is a member of, each carrying
// its unread count.
func (d *Directory) ListMyRooms(ctx context.Context) ([]model.ChatRoom, error) {
	var payload []roomPayload
	if err := d.c.do(ctx, http.MethodGet, "/v1/chat/my/rooms", &payload); err != nil {
		return nil, err
	}
	rooms := make([]model.ChatRoom, 0, len(payload))
	for _, p := range payload {
		kind := model.RoomPrivate
		if p.IsGroupChat == "Y" {
			kind = model.RoomGroup
		}
		rooms = append(rooms, model.ChatRoom{
			ID:          p.RoomID,
			Name:        p.RoomName,
			Kind:        kind,
			UnreadCount: p.UnreadCount,
		})
	}
	return rooms, nil
}

// EnsurePrivateRoom returns the id of the private room between the caller
// and otherMemberID, creating it first if none exists. Repeated calls with
// the same member return the same id; the server responds with the bare id.
func (d *Directory) EnsurePrivateRoom(ctx context.Context, otherMemberID int64) (int64, error) {
	if otherMemberID <= 0 {
		return 0, chaterr.Validation("member id %d", otherMemberID)
	}
	var roomID int64
	path := fmt.Sprintf("/v1/chat/room/private/create?other_member_id=%d", otherMemberID)
	if err := d.c.do(ctx, http.MethodPost, path, &roomID); err != nil {
		return 0, err
	}
	return roomID, nil
}

// CreateGroupRoom creates a group room with the given name. The server does
// not echo the room back, so the returned ChatRoom carries an id only when
// the response provided one.
func (d *Directory) CreateGroupRoom(ctx context.Context, name string) (model.ChatRoom, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.ChatRoom{}, chaterr.Validation("room name is empty")
	}
	path := "/v1/chat/room/group/create?roomName=" + url.QueryEscape(name)
	if err := d.c.do(ctx, http.MethodPost, path, nil); err != nil {
		return model.ChatRoom{}, err
	}
	return model.ChatRoom{Name: name, Kind: model.RoomGroup}, nil
}

// JoinGroupRoom adds the caller to a group room. Already being a member is
// not an error.
func (d *Directory) JoinGroupRoom(ctx context.Context, roomID int64) error {
	return d.c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/chat/room/group/%d/join", roomID), nil)
}

// LeaveGroupRoom removes the caller from a group room. Private rooms are
// never leavable; the guard runs before any request is issued.
func (d *Directory) LeaveGroupRoom(ctx context.Context, room model.ChatRoom) error {
	if !room.IsGroup() {
		return chaterr.InvalidOperation("private room %d cannot be left", room.ID)
	}
	return d.c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/chat/room/group/%d/leave", room.ID), nil)
}
