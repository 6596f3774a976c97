package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type reactionKey struct {
	kind    domain.ReactionKind
	dreamID domain.DreamID
	userID  domain.UserID
}

type ReactionStore struct {
	mu        sync.RWMutex
	reactions map[reactionKey]*domain.Reaction
}

func NewReactionStore() *ReactionStore {
	return &ReactionStore{
		reactions: make(map[reactionKey]*domain.Reaction),
	}
}

func (s *ReactionStore) SetReaction(_ context.Context, r *domain.Reaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reactions[reactionKey{r.Kind, r.DreamID, r.UserID}] = r
	return nil
}

func (s *ReactionStore) ClearReaction(_ context.Context, kind domain.ReactionKind, dreamID domain.DreamID, userID domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.reactions, reactionKey{kind, dreamID, userID})
	return nil
}

func (s *ReactionStore) HasReaction(_ context.Context, kind domain.ReactionKind, dreamID domain.DreamID, userID domain.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.reactions[reactionKey{kind, dreamID, userID}]
	return ok, nil
}

func (s *ReactionStore) CountReactions(_ context.Context, kind domain.ReactionKind, dreamID domain.DreamID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for k := range s.reactions {
		if k.kind == kind && k.dreamID == dreamID {
			n++
		}
	}
	return n, nil
}

func (s *ReactionStore) ListReactionsByUser(_ context.Context, kind domain.ReactionKind, userID domain.UserID) ([]*domain.Reaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Reaction
	for k, r := range s.reactions {
		if k.kind == kind && k.userID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
