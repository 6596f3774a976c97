// Package memory holds in-memory implementations of the storage ports.
// They are not persistent and are only suitable for local mode and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type DreamStore struct {
	mu     sync.RWMutex
	dreams map[domain.DreamID]*domain.Dream
}

func NewDreamStore() *DreamStore {
	return &DreamStore{
		dreams: make(map[domain.DreamID]*domain.Dream),
	}
}

func (s *DreamStore) CreateDream(_ context.Context, dream *domain.Dream) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.dreams[dream.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.dreams[dream.ID] = dream
	return nil
}

func (s *DreamStore) GetDream(_ context.Context, id domain.DreamID) (*domain.Dream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dream, ok := s.dreams[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return dream, nil
}

func (s *DreamStore) UpdateDream(_ context.Context, dream *domain.Dream) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.dreams[dream.ID]; !exists {
		return domain.ErrNotFound
	}
	s.dreams[dream.ID] = dream
	return nil
}

func (s *DreamStore) DeleteDream(_ context.Context, id domain.DreamID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.dreams[id]; !exists {
		return domain.ErrNotFound
	}
	delete(s.dreams, id)
	return nil
}

func (s *DreamStore) QueryDreams(_ context.Context, q domain.DreamQuery) (*domain.DreamPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.match(q)

	// Newest first, matching the Firestore ordering.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start := 0
	if q.Cursor != "" {
		for i, d := range matched {
			if string(d.ID) == q.Cursor {
				start = i + 1
				break
			}
		}
	}
	if start > len(matched) {
		start = len(matched)
	}
	matched = matched[start:]

	size := q.PageSize
	if size <= 0 {
		size = 20
	}

	page := &domain.DreamPage{}
	if len(matched) > size {
		page.Dreams = matched[:size]
		page.HasMore = true
		page.Cursor = string(page.Dreams[size-1].ID)
	} else {
		page.Dreams = matched
	}
	return page, nil
}

func (s *DreamStore) ListAllDreamsByUser(_ context.Context, userID domain.UserID) ([]*domain.Dream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Dream
	for _, d := range s.dreams {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *DreamStore) match(q domain.DreamQuery) []*domain.Dream {
	var out []*domain.Dream
	for _, d := range s.dreams {
		switch q.Kind {
		case domain.ListMine:
			if d.UserID != q.UserID {
				continue
			}
		case domain.ListPublic:
			if !d.Public {
				continue
			}
		case domain.ListByUser:
			if d.UserID != q.UserID || !d.Public {
				continue
			}
		default:
			continue
		}
		if !hasAllTags(d.Tags, q.Tags) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func hasAllTags(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
