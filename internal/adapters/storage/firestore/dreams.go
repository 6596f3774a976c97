package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type dreamDoc struct {
	UserID         string    `firestore:"user_id"`
	Title          string    `firestore:"title"`
	Description    string    `firestore:"description"`
	Mood           string    `firestore:"mood"`
	Emotions       []string  `firestore:"emotions"`
	Tags           []string  `firestore:"tags"`
	Public         bool      `firestore:"public"`
	ImageURL       string    `firestore:"image_url"`
	Interpretation string    `firestore:"interpretation"`
	DreamedAt      time.Time `firestore:"dreamed_at"`
	CreatedAt      time.Time `firestore:"created_at"`
	UpdatedAt      time.Time `firestore:"updated_at"`
}

func toDreamDoc(d *domain.Dream) dreamDoc {
	return dreamDoc{
		UserID:         string(d.UserID),
		Title:          d.Title,
		Description:    d.Description,
		Mood:           d.Mood,
		Emotions:       d.Emotions,
		Tags:           d.Tags,
		Public:         d.Public,
		ImageURL:       d.ImageURL,
		Interpretation: d.Interpretation,
		DreamedAt:      d.DreamedAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (doc dreamDoc) toDomain(id domain.DreamID) *domain.Dream {
	return &domain.Dream{
		ID:             id,
		UserID:         domain.UserID(doc.UserID),
		Title:          doc.Title,
		Description:    doc.Description,
		Mood:           doc.Mood,
		Emotions:       doc.Emotions,
		Tags:           doc.Tags,
		Public:         doc.Public,
		ImageURL:       doc.ImageURL,
		Interpretation: doc.Interpretation,
		DreamedAt:      doc.DreamedAt,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}

// ─────────────────────────────────────────
// DreamStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateDream(ctx context.Context, dream *domain.Dream) error {
	_, err := s.dreamDoc(dream.ID).Create(ctx, toDreamDoc(dream))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("firestore CreateDream: %w", err)
	}
	return nil
}

func (s *Store) GetDream(ctx context.Context, id domain.DreamID) (*domain.Dream, error) {
	snap, err := s.dreamDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetDream: %w", err)
	}

	var doc dreamDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetDream decode: %w", err)
	}
	return doc.toDomain(id), nil
}

func (s *Store) UpdateDream(ctx context.Context, dream *domain.Dream) error {
	_, err := s.dreamDoc(dream.ID).Set(ctx, toDreamDoc(dream))
	if err != nil {
		return fmt.Errorf("firestore UpdateDream: %w", err)
	}
	return nil
}

func (s *Store) DeleteDream(ctx context.Context, id domain.DreamID) error {
	_, err := s.dreamDoc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("firestore DeleteDream: %w", err)
	}
	return nil
}

// QueryDreams filters by listing kind and optional tags, newest first.
// The cursor is the last dream ID of the previous page.
func (s *Store) QueryDreams(ctx context.Context, q domain.DreamQuery) (*domain.DreamPage, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	fq := s.dreamsCol().Query
	switch q.Kind {
	case domain.ListPublic:
		fq = fq.Where("public", "==", true)
	case domain.ListMine:
		fq = fq.Where("user_id", "==", string(q.UserID))
	case domain.ListByUser:
		fq = fq.Where("user_id", "==", string(q.UserID)).Where("public", "==", true)
	default:
		return nil, fmt.Errorf("firestore QueryDreams: unknown list kind %q", q.Kind)
	}

	// Firestore allows a single array-contains clause; additional tags
	// are filtered after decode.
	var extraTags []string
	if len(q.Tags) > 0 {
		fq = fq.Where("tags", "array-contains", q.Tags[0])
		extraTags = q.Tags[1:]
	}

	fq = fq.OrderBy("created_at", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Desc)

	if q.Cursor != "" {
		cursorSnap, err := s.dreamDoc(domain.DreamID(q.Cursor)).Get(ctx)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil, fmt.Errorf("%w: stale cursor", domain.ErrBadParams)
			}
			return nil, fmt.Errorf("firestore QueryDreams cursor: %w", err)
		}
		createdAt, err := cursorSnap.DataAt("created_at")
		if err != nil {
			return nil, fmt.Errorf("firestore QueryDreams cursor: %w", err)
		}
		fq = fq.StartAfter(createdAt, cursorSnap.Ref.ID)
	}

	// A query limit only works when every fetched doc counts toward
	// the page. Extra tags are filtered after decode, so a limited
	// query could drop matches past the limit; those queries read
	// until enough matches accumulate or the iterator is exhausted.
	if len(extraTags) == 0 {
		fq = fq.Limit(pageSize + 1)
	}

	iter := fq.Documents(ctx)
	defer iter.Stop()

	next := func() (*domain.Dream, error) {
		for {
			snap, err := iter.Next()
			if err != nil {
				return nil, err
			}

			var doc dreamDoc
			if err := snap.DataTo(&doc); err != nil {
				return nil, fmt.Errorf("decode dreamDoc: %w", err)
			}

			dream := doc.toDomain(domain.DreamID(snap.Ref.ID))
			if !hasAllTags(dream.Tags, extraTags) {
				continue
			}
			return dream, nil
		}
	}

	page, err := collectPage(pageSize, next)
	if err != nil {
		return nil, fmt.Errorf("firestore QueryDreams: %w", err)
	}
	return page, nil
}

// collectPage pulls pageSize+1 dreams from next to learn whether a
// further page exists, then trims to pageSize. next signals
// exhaustion with iterator.Done.
func collectPage(pageSize int, next func() (*domain.Dream, error)) (*domain.DreamPage, error) {
	page := &domain.DreamPage{}
	for len(page.Dreams) <= pageSize {
		dream, err := next()
		if err == iterator.Done {
			return page, nil
		}
		if err != nil {
			return nil, err
		}
		page.Dreams = append(page.Dreams, dream)
	}
	page.Dreams = page.Dreams[:pageSize]
	page.HasMore = true
	page.Cursor = string(page.Dreams[pageSize-1].ID)
	return page, nil
}

func (s *Store) ListAllDreamsByUser(ctx context.Context, userID domain.UserID) ([]*domain.Dream, error) {
	iter := s.dreamsCol().
		Where("user_id", "==", string(userID)).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var out []*domain.Dream
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListAllDreamsByUser: %w", err)
		}

		var doc dreamDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode dreamDoc: %w", err)
		}
		out = append(out, doc.toDomain(domain.DreamID(snap.Ref.ID)))
	}
	return out, nil
}

func hasAllTags(dreamTags, want []string) bool {
	for _, w := range want {
		found := false
		for _, t := range dreamTags {
			if t == w {
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
