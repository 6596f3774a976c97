package memory

import (
	"context"
	"sync"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

// UsageStore keeps daily action counters in memory. The single mutex
// serializes check-then-increment, giving the same isolation the
// Firestore transaction provides in production.
type UsageStore struct {
	mu       sync.Mutex
	counters map[string]map[domain.ActionType]int
}

func NewUsageStore() *UsageStore {
	return &UsageStore{
		counters: make(map[string]map[domain.ActionType]int),
	}
}

func (s *UsageStore) IncrementIfUnder(
	_ context.Context,
	userID domain.UserID,
	dateKey string,
	action domain.ActionType,
	limit int,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.UsageKey(userID, dateKey)
	counts, ok := s.counters[key]
	if !ok {
		counts = domain.ZeroCounts()
		s.counters[key] = counts
	}

	current := counts[action]
	if current >= limit {
		return current, &domain.LimitExceededError{Action: action, Current: current, Limit: limit}
	}

	counts[action] = current + 1
	return current + 1, nil
}

func (s *UsageStore) GetUsage(
	_ context.Context,
	userID domain.UserID,
	dateKey string,
) (map[domain.ActionType]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts, ok := s.counters[domain.UsageKey(userID, dateKey)]
	if !ok {
		return domain.ZeroCounts(), nil
	}

	out := make(map[domain.ActionType]int, len(counts))
	for k, v := range counts {
		out[k] = v
	}
	return out, nil
}
