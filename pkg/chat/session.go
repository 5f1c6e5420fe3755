package chat

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wonguwon/jwt-login/pkg/chaterr"
	"github.com/wonguwon/jwt-login/pkg/model"
	"github.com/wonguwon/jwt-login/pkg/ws"
)

type SessionState string

const (
	StateIdle    SessionState = "idle"
	StateLoading SessionState = "loading"
	StateLive    SessionState = "live"
	StateLeaving SessionState = "leaving"
)

// HistoryLoader fetches the persisted backlog of a room.
type HistoryLoader interface {
	FetchHistory(ctx context.Context, roomID int64) ([]model.ChatMessage, error)
}

// ReadTracker records that the room's backlog has been consumed.
type ReadTracker interface {
	MarkRead(ctx context.Context, roomID int64) error
}

// Conn is one single-use live connection, the shape of ws.Manager.
type Conn interface {
	Connect(ctx context.Context, roomID int64) error
	Disconnect()
	Send(body string) error
	Events() <-chan ws.Event
}

// Session orchestrates one open room at a time: history first, then the
// live stream, read marker and teardown on exit. A fresh Conn is built per
// room-open so that at most one live connection exists process-wide.
type Session struct {
	history HistoryLoader
	reader  ReadTracker
	dial    func() Conn
	store   *MessageStore
	log     *zap.Logger

	mu     sync.Mutex
	state  SessionState
	roomID int64
	gen    string
	conn   Conn
	lost   error

	eventsDone chan struct{}
	updates    chan model.ChatMessage
}

func NewSession(history HistoryLoader, reader ReadTracker, dial func() Conn, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		history: history,
		reader:  reader,
		dial:    dial,
		store:   NewMessageStore(),
		log:     logger,
		state:   StateIdle,
		updates: make(chan model.ChatMessage, 64),
	}
}

// Updates delivers live messages as they land in the store, for rendering.
// Best-effort: a stalled reader loses notifications, never messages, which
// stay readable from the store.
func (s *Session) Updates() <-chan model.ChatMessage {
	return s.updates
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Store exposes the message view of the open room.
func (s *Session) Store() *MessageStore {
	return s.store
}

// RoomID returns the open room, zero when idle.
func (s *Session) RoomID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

// ConnectionLost reports the terminal transport error of the open room, if
// any. The session stays Live so the backlog remains readable.
func (s *Session) ConnectionLost() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lost
}

// OpenRoom hydrates the room's history, seeds the store and opens the live
// connection. A failed history fetch degrades rather than aborts: the
// error is returned but the connection is still attempted, so the user can
// chat even when the backlog is unavailable. An open room is closed first.
func (s *Session) OpenRoom(ctx context.Context, roomID int64) error {
	if s.State() == StateLive {
		if err := s.CloseRoom(ctx); err != nil {
			return err
		}
	}

	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return chaterr.InvalidState("open room while %s", state)
	}
	gen := uuid.NewString()
	s.state = StateLoading
	s.roomID = roomID
	s.gen = gen
	s.lost = nil
	s.mu.Unlock()

	history, histErr := s.history.FetchHistory(ctx, roomID)

	// The user may have navigated away while the fetch was in flight;
	// a stale result must never seed the next room's view, so the seed
	// happens under the same lock that validates the generation.
	s.mu.Lock()
	if s.gen != gen || s.state != StateLoading {
		s.mu.Unlock()
		return chaterr.InvalidState("room open superseded")
	}
	if histErr != nil {
		s.store.Seed(nil)
	} else {
		s.store.Seed(history)
	}
	s.mu.Unlock()

	if histErr != nil {
		s.log.Warn("history unavailable, continuing without backlog",
			zap.Int64("room_id", roomID), zap.Error(histErr))
	}

	conn := s.dial()

	// Re-validate before going Live: a close that raced the dial has
	// already reset the session, and this open must not resurrect it.
	s.mu.Lock()
	if s.gen != gen || s.state != StateLoading {
		s.mu.Unlock()
		return chaterr.InvalidState("room open superseded")
	}
	s.conn = conn
	s.state = StateLive
	done := make(chan struct{})
	s.eventsDone = done
	s.mu.Unlock()

	if err := conn.Connect(ctx, roomID); err != nil {
		s.mu.Lock()
		s.state = StateIdle
		s.conn = nil
		s.roomID = 0
		s.eventsDone = nil
		s.mu.Unlock()
		s.store.Clear()
		return err
	}

	go s.consumeEvents(conn, gen, roomID, done)
	return histErr
}

// consumeEvents feeds live frames into the store until the connection's
// event channel closes.
func (s *Session) consumeEvents(conn Conn, gen string, roomID int64, done chan struct{}) {
	defer close(done)
	for ev := range conn.Events() {
		switch ev.Kind {
		case ws.EventFrame:
			if ev.Message.RoomID != roomID {
				s.log.Warn("dropping frame for foreign room",
					zap.Int64("room_id", ev.Message.RoomID),
					zap.Int64("open_room_id", roomID))
				continue
			}
			s.mu.Lock()
			stale := s.gen != gen
			s.mu.Unlock()
			if stale {
				continue
			}
			if s.store.Append(ev.Message) {
				select {
				case s.updates <- ev.Message:
				default:
				}
			}
		case ws.EventLost:
			s.mu.Lock()
			if s.gen == gen {
				s.lost = ev.Err
			}
			s.mu.Unlock()
			s.log.Error("live stream lost", zap.Int64("room_id", roomID), zap.Error(ev.Err))
		}
	}
}

// CloseRoom records read state, tears the connection down and clears the
// store. The read marker is best-effort: its failure is logged and never
// blocks teardown. Closing during Loading aborts the in-flight open.
func (s *Session) CloseRoom(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateLoading:
		// Abort: the generation bump makes the in-flight fetch result
		// land in the void.
		s.gen = uuid.NewString()
		s.state = StateIdle
		s.roomID = 0
		s.mu.Unlock()
		s.store.Clear()
		return nil
	case StateLive:
	default:
		state := s.state
		s.mu.Unlock()
		return chaterr.InvalidState("close room while %s", state)
	}
	s.state = StateLeaving
	conn := s.conn
	roomID := s.roomID
	done := s.eventsDone
	s.mu.Unlock()

	if err := s.reader.MarkRead(ctx, roomID); err != nil {
		s.log.Warn("mark read failed", zap.Int64("room_id", roomID), zap.Error(err))
	}

	conn.Disconnect()
	if done != nil {
		<-done
	}

	s.mu.Lock()
	s.state = StateIdle
	s.conn = nil
	s.roomID = 0
	s.gen = ""
	s.eventsDone = nil
	s.mu.Unlock()
	s.store.Clear()
	return nil
}

// Close releases the open room on any exit path. Safe from defer: closing
// an idle session is a no-op.
func (s *Session) Close(ctx context.Context) error {
	switch s.State() {
	case StateIdle, StateLeaving:
		return nil
	}
	return s.CloseRoom(ctx)
}

// SendMessage delegates to the live connection. Valid only while Live.
func (s *Session) SendMessage(body string) error {
	s.mu.Lock()
	if s.state != StateLive {
		state := s.state
		s.mu.Unlock()
		return chaterr.InvalidState("send while %s", state)
	}
	conn := s.conn
	s.mu.Unlock()
	return conn.Send(body)
}
