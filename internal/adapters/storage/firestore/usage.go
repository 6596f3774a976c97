package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type usageDoc struct {
	UserID  string         `firestore:"user_id"`
	DateKey string         `firestore:"date_key"`
	Counts  map[string]int `firestore:"counts"`
}

// ─────────────────────────────────────────
// UsageStore implementation
// ─────────────────────────────────────────

// IncrementIfUnder runs read-check-increment inside one Firestore
// transaction on the (user, day) counter document. Concurrent callers
// contending for the last slot serialize on the document; the loser's
// transaction retries against the committed count and is denied.
func (s *Store) IncrementIfUnder(
	ctx context.Context,
	userID domain.UserID,
	dateKey string,
	action domain.ActionType,
	limit int,
) (int, error) {
	ref := s.usageDoc(userID, dateKey)

	var after int
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc := usageDoc{
			UserID:  string(userID),
			DateKey: dateKey,
			Counts:  stringCounts(domain.ZeroCounts()),
		}

		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			if err := snap.DataTo(&doc); err != nil {
				return fmt.Errorf("decode usageDoc: %w", err)
			}
			if doc.Counts == nil {
				doc.Counts = stringCounts(domain.ZeroCounts())
			}
		case status.Code(err) == codes.NotFound:
			// First action of the day: seed a fresh counter.
		default:
			return err
		}

		current := doc.Counts[string(action)]
		if current >= limit {
			return &domain.LimitExceededError{
				Action:  action,
				Current: current,
				Limit:   limit,
			}
		}

		doc.Counts[string(action)] = current + 1
		after = current + 1
		return tx.Set(ref, doc)
	})
	if err != nil {
		var limitErr *domain.LimitExceededError
		if errors.As(err, &limitErr) {
			return 0, limitErr
		}
		return 0, fmt.Errorf("firestore IncrementIfUnder: %w", err)
	}
	return after, nil
}

func (s *Store) GetUsage(ctx context.Context, userID domain.UserID, dateKey string) (map[domain.ActionType]int, error) {
	snap, err := s.usageDoc(userID, dateKey).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ZeroCounts(), nil
		}
		return nil, fmt.Errorf("firestore GetUsage: %w", err)
	}

	var doc usageDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetUsage decode: %w", err)
	}

	counts := domain.ZeroCounts()
	for k, v := range doc.Counts {
		counts[domain.ActionType(k)] = v
	}
	return counts, nil
}

func stringCounts(counts map[domain.ActionType]int) map[string]int {
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[string(k)] = v
	}
	return out
}
