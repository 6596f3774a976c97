package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type NoteStore struct {
	mu    sync.RWMutex
	notes map[domain.NoteID]*domain.Note
}

func NewNoteStore() *NoteStore {
	return &NoteStore{
		notes: make(map[domain.NoteID]*domain.Note),
	}
}

func (s *NoteStore) CreateNote(_ context.Context, note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notes[note.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.notes[note.ID] = note
	return nil
}

func (s *NoteStore) GetNote(_ context.Context, id domain.NoteID) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return n, nil
}

func (s *NoteStore) UpdateNote(_ context.Context, note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notes[note.ID]; !exists {
		return domain.ErrNotFound
	}
	s.notes[note.ID] = note
	return nil
}

func (s *NoteStore) DeleteNote(_ context.Context, id domain.NoteID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notes[id]; !exists {
		return domain.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

func (s *NoteStore) ListNotesByUser(_ context.Context, userID domain.UserID, limit int) ([]*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Note
	for _, n := range s.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
