package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type userDoc struct {
	DisplayName string    `firestore:"display_name"`
	PhotoURL    string    `firestore:"photo_url"`
	Bio         string    `firestore:"bio"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

// ─────────────────────────────────────────
// UserStore implementation
// ─────────────────────────────────────────

func (s *Store) UpsertProfile(ctx context.Context, profile *domain.UserProfile) error {
	// MergeAll requires map data.
	doc := map[string]interface{}{
		"display_name": profile.DisplayName,
		"photo_url":    profile.PhotoURL,
		"bio":          profile.Bio,
		"created_at":   profile.CreatedAt,
		"updated_at":   profile.UpdatedAt,
	}

	_, err := s.userDoc(profile.ID).Set(ctx, doc, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("firestore UpsertProfile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, id domain.UserID) (*domain.UserProfile, error) {
	snap, err := s.userDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetProfile: %w", err)
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetProfile decode: %w", err)
	}

	return &domain.UserProfile{
		ID:          id,
		DisplayName: doc.DisplayName,
		PhotoURL:    doc.PhotoURL,
		Bio:         doc.Bio,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}
