// Package ws owns the single live transport connection of the currently
// open room: its lifecycle state machine, inbound frame decoding, outbound
// sends and bounded redial on transport failure.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wonguwon/jwt-login/pkg/chaterr"
	"github.com/wonguwon/jwt-login/pkg/model"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed for the peer to acknowledge a close frame.
	closeWait = time.Second

	// Maximum message size allowed from the peer.
	maxMessageSize = 4096

	eventBuffer = 64
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateClosing      State = "closing"
)

// Manager drives one live connection for one room. It is single-use: once
// it reaches its final Disconnected state (deliberate close, exhausted
// redials or a failed dial) the event channel closes and a fresh Manager is
// needed for the next room.
type Manager struct {
	connectURL string
	token      string
	sender     string
	log        *zap.Logger

	redialMax  int
	redialBase time.Duration

	mu     sync.Mutex
	state  State
	conn   *websocket.Conn
	roomID int64

	events   chan Event
	pumpDone chan struct{}
	finished sync.Once
}

// NewManager prepares a manager for one room-open. connectURL is the
// ws(s)://host/connect endpoint; token is the process-wide bearer token,
// read once here and never re-read mid-connection; sender stamps outbound
// frames.
func NewManager(connectURL, token, sender string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		connectURL: connectURL,
		token:      token,
		sender:     sender,
		log:        logger,
		redialMax:  3,
		redialBase: 250 * time.Millisecond,
		state:      StateDisconnected,
		events:     make(chan Event, eventBuffer),
		pumpDone:   make(chan struct{}),
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Events returns the notification channel. It closes when the manager
// reaches its final Disconnected state.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Connect dials the live endpoint for roomID. Only valid from
// Disconnected; success lands in Open, emits EventOpened and starts the
// read pump. A failed dial is terminal for this instance.
func (m *Manager) Connect(ctx context.Context, roomID int64) error {
	m.mu.Lock()
	if m.state != StateDisconnected {
		state := m.state
		m.mu.Unlock()
		return chaterr.InvalidState("connect while %s", state)
	}
	m.state = StateConnecting
	m.roomID = roomID
	m.mu.Unlock()

	conn, err := m.dial(ctx, roomID)
	if err != nil {
		m.mu.Lock()
		m.state = StateDisconnected
		m.mu.Unlock()
		m.finish(nil)
		return chaterr.Network("dial room %d: %v", roomID, err)
	}

	m.mu.Lock()
	if m.state != StateConnecting {
		// Disconnect won the race while we were dialing.
		m.mu.Unlock()
		conn.Close()
		return chaterr.InvalidState("connect aborted")
	}
	m.conn = conn
	m.state = StateOpen
	m.mu.Unlock()

	m.log.Info("live connection open", zap.Int64("room_id", roomID))
	m.emit(Event{Kind: EventOpened})
	go m.readPump(conn)
	return nil
}

// Send transmits one outbound frame. Rejected locally unless the state is
// Open; empty bodies are never transmitted.
func (m *Manager) Send(body string) error {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return chaterr.Validation("message body is empty")
	}

	m.mu.Lock()
	if m.state != StateOpen {
		state := m.state
		m.mu.Unlock()
		return chaterr.InvalidState("send while %s", state)
	}
	conn := m.conn
	roomID := m.roomID
	m.mu.Unlock()

	frame := model.Frame{RoomID: roomID, SenderEmail: m.sender, Message: trimmed}
	data, err := json.Marshal(frame)
	if err != nil {
		return chaterr.Validation("encode frame: %v", err)
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return chaterr.Network("write frame: %v", err)
	}
	return nil
}

// Disconnect closes the connection deliberately: close frame, bounded wait
// for the peer's acknowledgement, then teardown. Lands in Disconnected and
// emits EventClosed. Safe to call in any state and more than once.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	switch m.state {
	case StateDisconnected, StateClosing:
		m.mu.Unlock()
		return
	case StateConnecting:
		m.state = StateDisconnected
		m.mu.Unlock()
		m.finish(&Event{Kind: EventClosed})
		return
	}
	m.state = StateClosing
	conn := m.conn
	m.mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		m.log.Debug("write close frame", zap.Error(err))
	}
	select {
	case <-m.pumpDone:
	case <-time.After(closeWait):
	}
	conn.Close()
	<-m.pumpDone

	m.mu.Lock()
	m.state = StateDisconnected
	m.conn = nil
	m.mu.Unlock()

	m.log.Info("live connection closed", zap.Int64("room_id", m.roomID))
	m.finish(&Event{Kind: EventClosed})
}

func (m *Manager) dial(ctx context.Context, roomID int64) (*websocket.Conn, error) {
	u, err := url.Parse(m.connectURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("roomId", strconv.FormatInt(roomID, 10))
	q.Set("token", m.token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(maxMessageSize)
	return conn, nil
}

// readPump reads frames until the connection dies. A read error during a
// deliberate close ends the pump quietly; any other error goes through the
// redial loop first.
func (m *Manager) readPump(conn *websocket.Conn) {
	defer close(m.pumpDone)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if m.State() != StateOpen {
				return
			}
			next, rerr := m.redial()
			if rerr != nil {
				if errors.Is(rerr, chaterr.ErrInvalidState) {
					// A deliberate disconnect won while we were
					// redialing.
					return
				}
				m.mu.Lock()
				m.state = StateDisconnected
				m.conn = nil
				m.mu.Unlock()
				m.log.Error("live connection lost",
					zap.Int64("room_id", m.roomID), zap.Error(rerr))
				m.finish(&Event{Kind: EventLost, Err: chaterr.Network("connection lost: %v", rerr)})
				return
			}
			conn = next
			continue
		}

		var frame model.Frame
		if err := json.Unmarshal(data, &frame); err != nil || !frame.Valid() {
			m.log.Warn("dropping malformed frame", zap.ByteString("frame", data))
			continue
		}
		m.emit(Event{Kind: EventFrame, Message: frame.ToMessage()})
	}
}

// redial retries the dial with doubling delays and a capped attempt count.
// It gives up early when the manager left Open in the meantime.
func (m *Manager) redial() (*websocket.Conn, error) {
	var lastErr error
	delay := m.redialBase
	for attempt := 1; attempt <= m.redialMax; attempt++ {
		time.Sleep(delay)
		delay *= 2

		if m.State() != StateOpen {
			return nil, chaterr.InvalidState("redial abandoned")
		}

		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		conn, err := m.dial(ctx, m.roomID)
		cancel()
		if err != nil {
			lastErr = err
			m.log.Warn("redial failed",
				zap.Int64("room_id", m.roomID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		m.mu.Lock()
		if m.state != StateOpen {
			m.mu.Unlock()
			conn.Close()
			return nil, chaterr.InvalidState("redial abandoned")
		}
		m.conn = conn
		m.mu.Unlock()
		m.log.Info("live connection re-established",
			zap.Int64("room_id", m.roomID), zap.Int("attempt", attempt))
		return conn, nil
	}
	return nil, lastErr
}

// emit never blocks the pump; a jammed consumer costs events, not the
// connection.
func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		m.log.Warn("event buffer full, dropping event", zap.String("kind", string(ev.Kind)))
	}
}

func (m *Manager) finish(ev *Event) {
	m.finished.Do(func() {
		if ev != nil {
			m.emit(*ev)
		}
		close(m.events)
	})
}
