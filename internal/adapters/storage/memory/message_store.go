package memory

import (
	"context"
	"sync"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type MessageStore struct {
	mu        sync.RWMutex
	bySession map[domain.SessionID][]*domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		bySession: make(map[domain.SessionID][]*domain.Message),
	}
}

func (s *MessageStore) AppendMessage(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bySession[msg.SessionID] = append(s.bySession[msg.SessionID], msg)
	return nil
}

// GetMessagesBySession returns the last `limit` messages in order.
// If limit <= 0, returns all.
func (s *MessageStore) GetMessagesBySession(_ context.Context, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.bySession[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	out := make([]*domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}
