// Package chat holds the ordered message view of the open room and the
// session orchestrator that drives history loading, the live connection
// and read-state recording.
package chat

import (
	"sync"

	"github.com/wonguwon/jwt-login/pkg/model"
)

// MessageStore holds the ordered, duplicate-free message sequence shown
// for one open room. History is seeded first; live messages append after,
// in arrival order when timestamps are absent or tied.
type MessageStore struct {
	mu   sync.RWMutex
	msgs []model.ChatMessage
	seen map[model.MessageKey]struct{}
}

func NewMessageStore() *MessageStore {
	return &MessageStore{seen: make(map[model.MessageKey]struct{})}
}

// Seed replaces the sequence with the room's backlog. Repeated entries in
// the backlog itself collapse to one.
func (s *MessageStore) Seed(history []model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = s.msgs[:0]
	s.seen = make(map[model.MessageKey]struct{}, len(history))
	for _, msg := range history {
		s.insert(msg)
	}
}

// Append inserts one live message preserving order. Returns false when a
// message with the same key is already present; the store is unchanged
// then.
func (s *MessageStore) Append(msg model.ChatMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(msg)
}

func (s *MessageStore) insert(msg model.ChatMessage) bool {
	key := msg.Key()
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}

	at := s.insertionPoint(msg)
	s.msgs = append(s.msgs, model.ChatMessage{})
	copy(s.msgs[at+1:], s.msgs[at:])
	s.msgs[at] = msg
	return true
}

// insertionPoint orders by SentAt where both sides carry one; zero stamps
// anchor at their arrival position and equal stamps keep arrival order.
func (s *MessageStore) insertionPoint(msg model.ChatMessage) int {
	if msg.SentAt.IsZero() {
		return len(s.msgs)
	}
	i := len(s.msgs)
	for i > 0 {
		prev := s.msgs[i-1]
		if prev.SentAt.IsZero() || !prev.SentAt.After(msg.SentAt) {
			break
		}
		i--
	}
	return i
}

// Clear empties the store. Called when the room session ends.
func (s *MessageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = nil
	s.seen = make(map[model.MessageKey]struct{})
}

// Messages returns an ordered snapshot for rendering. Each call yields a
// fresh copy, so callers can re-read from the start at any time.
func (s *MessageStore) Messages() []model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ChatMessage, len(s.msgs))
	copy(out, s.msgs)
	return out
}

func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs)
}
