package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type CommentStore struct {
	mu       sync.RWMutex
	comments map[domain.CommentID]*domain.Comment
	byDream  map[domain.DreamID][]domain.CommentID
}

func NewCommentStore() *CommentStore {
	return &CommentStore{
		comments: make(map[domain.CommentID]*domain.Comment),
		byDream:  make(map[domain.DreamID][]domain.CommentID),
	}
}

func (s *CommentStore) AddComment(_ context.Context, comment *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.comments[comment.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.comments[comment.ID] = comment
	s.byDream[comment.DreamID] = append(s.byDream[comment.DreamID], comment.ID)
	return nil
}

func (s *CommentStore) GetComment(_ context.Context, id domain.CommentID) (*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *CommentStore) ListCommentsByDream(_ context.Context, dreamID domain.DreamID, limit int) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byDream[dreamID]
	out := make([]*domain.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.comments[id]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *CommentStore) DeleteComment(_ context.Context, id domain.CommentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.comments, id)

	ids := s.byDream[c.DreamID]
	for i, cid := range ids {
		if cid == id {
			s.byDream[c.DreamID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
