package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type FriendStore struct {
	mu       sync.RWMutex
	requests map[domain.FriendRequestID]*domain.FriendRequest
}

func NewFriendStore() *FriendStore {
	return &FriendStore{
		requests: make(map[domain.FriendRequestID]*domain.FriendRequest),
	}
}

func (s *FriendStore) CreateFriendRequest(_ context.Context, req *domain.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[req.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.requests[req.ID] = req
	return nil
}

func (s *FriendStore) GetFriendRequest(_ context.Context, id domain.FriendRequestID) (*domain.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

func (s *FriendStore) UpdateFriendRequest(_ context.Context, req *domain.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[req.ID]; !exists {
		return domain.ErrNotFound
	}
	s.requests[req.ID] = req
	return nil
}

// ListFriendRequestsForUser returns requests where the user is sender
// or recipient, optionally filtered by status.
func (s *FriendStore) ListFriendRequestsForUser(
	_ context.Context,
	userID domain.UserID,
	status domain.FriendRequestStatus,
) ([]*domain.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.FriendRequest
	for _, req := range s.requests {
		if req.FromUserID != userID && req.ToUserID != userID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
