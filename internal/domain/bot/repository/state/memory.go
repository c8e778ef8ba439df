// Package state contains conversation state store implementations
package state

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

// MemoryStore keeps conversations in process memory.
// State is lost on restart.
type MemoryStore struct {
	mu    sync.Mutex
	convs map[int64]entities.Conversation
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore creates a new MemoryStore; ttl <= 0 keeps conversations forever
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		convs: make(map[int64]entities.Conversation),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get implements deps.StateStore
func (s *MemoryStore) Get(_ context.Context, userID int64) (entities.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(userID), nil
}

// Set implements deps.StateStore
func (s *MemoryStore) Set(_ context.Context, userID int64, conv entities.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !conv.Active() {
		delete(s.convs, userID)
		return nil
	}
	conv.Data = maps.Clone(conv.Data)
	s.convs[userID] = conv
	return nil
}

// Clear implements deps.StateStore
func (s *MemoryStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.convs, userID)
	return nil
}

// CompareAndSwap implements deps.StateStore
func (s *MemoryStore) CompareAndSwap(_ context.Context, userID int64, expected, next entities.State) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load(userID)
	if current.State != expected {
		return false, nil
	}

	if next == entities.StateNone {
		delete(s.convs, userID)
		return true, nil
	}

	current.State = next
	current.UpdatedAt = s.now().UTC()
	s.convs[userID] = current
	return true, nil
}

// load returns the live conversation; caller holds mu
func (s *MemoryStore) load(userID int64) entities.Conversation {
	conv, ok := s.convs[userID]
	if !ok {
		return entities.Conversation{}
	}
	if s.ttl > 0 && s.now().Sub(conv.UpdatedAt) > s.ttl {
		delete(s.convs, userID)
		return entities.Conversation{}
	}
	conv.Data = maps.Clone(conv.Data)
	return conv
}
