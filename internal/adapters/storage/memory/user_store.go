package memory

import (
	"context"
	"sync"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type UserStore struct {
	mu       sync.RWMutex
	profiles map[domain.UserID]*domain.UserProfile
}

func NewUserStore() *UserStore {
	return &UserStore{
		profiles: make(map[domain.UserID]*domain.UserProfile),
	}
}

func (s *UserStore) UpsertProfile(_ context.Context, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.ID] = profile
	return nil
}

func (s *UserStore) GetProfile(_ context.Context, id domain.UserID) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
