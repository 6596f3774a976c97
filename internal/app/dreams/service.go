// Package dreams is the access layer for dreams and profiles. Reads go
// through the cache; writes go through the backoff wrapper and
// invalidate whatever they made stale.
package dreams

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/berningb/dream-speak-sub000/internal/backoff"
	"github.com/berningb/dream-speak-sub000/internal/cache"
	"github.com/berningb/dream-speak-sub000/internal/domain"
	"github.com/berningb/dream-speak-sub000/internal/observability"
)

type Service struct {
	store domain.DreamStore
	users domain.UserStore
	cache *cache.Cache
	now   func() time.Time
}

func NewService(store domain.DreamStore, users domain.UserStore, c *cache.Cache) *Service {
	return &Service{
		store: store,
		users: users,
		cache: c,
		now:   time.Now,
	}
}

type CreateDreamInput struct {
	Title       string
	Description string
	Mood        string
	Emotions    []string
	Tags        []string
	Public      bool
	DreamedAt   time.Time
}

func (s *Service) CreateDream(ctx context.Context, in CreateDreamInput) (*domain.Dream, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	if in.Title == "" && in.Description == "" {
		return nil, domain.ErrBadParams
	}

	now := s.now()
	dreamedAt := in.DreamedAt
	if dreamedAt.IsZero() {
		dreamedAt = now
	}

	dream := &domain.Dream{
		ID:          domain.DreamID(uuid.NewString()),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Mood:        in.Mood,
		Emotions:    in.Emotions,
		Tags:        in.Tags,
		Public:      in.Public,
		DreamedAt:   dreamedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := backoff.Do(ctx, backoff.DefaultAttempts, backoff.DefaultBase, func(ctx context.Context) error {
		return s.store.CreateDream(ctx, dream)
	})
	if err != nil {
		observability.FromContext(ctx).Error("create dream failed",
			zap.String("user_id", string(userID)),
			zap.Error(err),
		)
		return nil, err
	}

	s.cache.PutDream(dream)
	s.cache.InvalidateLists()

	observability.FromContext(ctx).Info("dream created",
		zap.String("dream_id", string(dream.ID)),
		zap.String("user_id", string(userID)),
		zap.Bool("public", dream.Public),
	)
	return dream, nil
}

// GetDream serves from the cache when fresh, otherwise from the store.
// Private dreams are only visible to their owner.
func (s *Service) GetDream(ctx context.Context, id domain.DreamID) (*domain.Dream, error) {
	dream, hit := s.cache.GetDream(id)
	if !hit {
		var err error
		dream, err = s.store.GetDream(ctx, id)
		if err != nil {
			return nil, err
		}
		s.cache.PutDream(dream)
	}

	if !dream.Public {
		userID, _ := domain.UserFromCtx(ctx)
		if userID != dream.UserID {
			return nil, domain.ErrForbidden
		}
	}
	return dream, nil
}

type UpdateDreamInput struct {
	Title       *string
	Description *string
	Mood        *string
	Emotions    *[]string
	Tags        *[]string
	Public      *bool
	DreamedAt   *time.Time
}

func (s *Service) UpdateDream(ctx context.Context, id domain.DreamID, in UpdateDreamInput) (*domain.Dream, error) {
	dream, err := s.ownedDream(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *dream
	if in.Title != nil {
		updated.Title = *in.Title
	}
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.Mood != nil {
		updated.Mood = *in.Mood
	}
	if in.Emotions != nil {
		updated.Emotions = *in.Emotions
	}
	if in.Tags != nil {
		updated.Tags = *in.Tags
	}
	if in.Public != nil {
		updated.Public = *in.Public
	}
	if in.DreamedAt != nil {
		updated.DreamedAt = *in.DreamedAt
	}
	updated.UpdatedAt = s.now()

	if err := s.writeDream(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) DeleteDream(ctx context.Context, id domain.DreamID) error {
	if _, err := s.ownedDream(ctx, id); err != nil {
		return err
	}

	err := backoff.Do(ctx, backoff.DefaultAttempts, backoff.DefaultBase, func(ctx context.Context) error {
		return s.store.DeleteDream(ctx, id)
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateDream(id)
	s.cache.InvalidateLists()

	observability.FromContext(ctx).Info("dream deleted", zap.String("dream_id", string(id)))
	return nil
}

// ListDreams serves one page, caching the result under the query's
// composite key.
func (s *Service) ListDreams(ctx context.Context, q domain.DreamQuery) (*domain.DreamPage, error) {
	userID, authed := domain.UserFromCtx(ctx)

	switch q.Kind {
	case domain.ListMine:
		if !authed {
			return nil, domain.ErrNotAuthenticated
		}
		q.UserID = userID
	case domain.ListPublic:
		q.UserID = ""
	case domain.ListByUser:
		if q.UserID == "" {
			return nil, domain.ErrBadParams
		}
	default:
		return nil, domain.ErrBadParams
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}

	if page, hit := s.cache.GetList(q); hit {
		return page, nil
	}

	page, err := s.store.QueryDreams(ctx, q)
	if err != nil {
		return nil, err
	}
	s.cache.PutList(q, page)
	return page, nil
}

// ListAllMine returns every dream of the current user, via the
// whole-collection cache slot. Caching the full list also seeds the
// per-dream slots.
func (s *Service) ListAllMine(ctx context.Context) ([]*domain.Dream, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	if all, hit := s.cache.GetFullList(domain.ListMine, userID); hit {
		return all, nil
	}

	all, err := s.store.ListAllDreamsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.PutFullList(domain.ListMine, userID, all)
	return all, nil
}

// AttachImage stores a generated illustration URL on an owned dream.
func (s *Service) AttachImage(ctx context.Context, id domain.DreamID, imageURL string) (*domain.Dream, error) {
	dream, err := s.ownedDream(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *dream
	updated.ImageURL = imageURL
	updated.UpdatedAt = s.now()

	if err := s.writeDream(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// AttachInterpretation stores an AI interpretation on an owned dream.
func (s *Service) AttachInterpretation(ctx context.Context, id domain.DreamID, text string) (*domain.Dream, error) {
	dream, err := s.ownedDream(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *dream
	updated.Interpretation = text
	updated.UpdatedAt = s.now()

	if err := s.writeDream(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) GetProfile(ctx context.Context, id domain.UserID) (*domain.UserProfile, error) {
	return s.users.GetProfile(ctx, id)
}

type UpdateProfileInput struct {
	DisplayName string
	PhotoURL    string
	Bio         string
}

func (s *Service) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*domain.UserProfile, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	now := s.now()
	profile := &domain.UserProfile{
		ID:          userID,
		DisplayName: in.DisplayName,
		PhotoURL:    in.PhotoURL,
		Bio:         in.Bio,
		UpdatedAt:   now,
	}
	if existing, err := s.users.GetProfile(ctx, userID); err == nil {
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.CreatedAt = now
	}

	err := backoff.Do(ctx, backoff.DefaultAttempts, backoff.DefaultBase, func(ctx context.Context) error {
		return s.users.UpsertProfile(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// ownedDream fetches a dream and verifies the current user owns it.
func (s *Service) ownedDream(ctx context.Context, id domain.DreamID) (*domain.Dream, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	dream, err := s.store.GetDream(ctx, id)
	if err != nil {
		return nil, err
	}
	if dream.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return dream, nil
}

// writeDream persists an updated dream and refreshes the caches.
func (s *Service) writeDream(ctx context.Context, dream *domain.Dream) error {
	err := backoff.Do(ctx, backoff.DefaultAttempts, backoff.DefaultBase, func(ctx context.Context) error {
		return s.store.UpdateDream(ctx, dream)
	})
	if err != nil {
		observability.FromContext(ctx).Error("update dream failed",
			zap.String("dream_id", string(dream.ID)),
			zap.Error(err),
		)
		return err
	}

	s.cache.PutDream(dream)
	s.cache.InvalidateLists()
	return nil
}
