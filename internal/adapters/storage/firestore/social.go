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

type commentDoc struct {
	DreamID   string    `firestore:"dream_id"`
	UserID    string    `firestore:"user_id"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`
}

type reactionDoc struct {
	Kind      string    `firestore:"kind"`
	DreamID   string    `firestore:"dream_id"`
	UserID    string    `firestore:"user_id"`
	CreatedAt time.Time `firestore:"created_at"`
}

type noteDoc struct {
	UserID    string    `firestore:"user_id"`
	Title     string    `firestore:"title"`
	Body      string    `firestore:"body"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type friendRequestDoc struct {
	FromUserID  string     `firestore:"from_user_id"`
	ToUserID    string     `firestore:"to_user_id"`
	Status      string     `firestore:"status"`
	CreatedAt   time.Time  `firestore:"created_at"`
	RespondedAt *time.Time `firestore:"responded_at"`
}

// ─────────────────────────────────────────
// CommentStore implementation
// ─────────────────────────────────────────

func (s *Store) AddComment(ctx context.Context, comment *domain.Comment) error {
	doc := commentDoc{
		DreamID:   string(comment.DreamID),
		UserID:    string(comment.UserID),
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}

	_, err := s.commentDoc(comment.ID).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore AddComment: %w", err)
	}
	return nil
}

func (s *Store) GetComment(ctx context.Context, id domain.CommentID) (*domain.Comment, error) {
	snap, err := s.commentDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetComment: %w", err)
	}

	var doc commentDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetComment decode: %w", err)
	}

	return &domain.Comment{
		ID:        id,
		DreamID:   domain.DreamID(doc.DreamID),
		UserID:    domain.UserID(doc.UserID),
		Text:      doc.Text,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (s *Store) ListCommentsByDream(ctx context.Context, dreamID domain.DreamID, limit int) ([]*domain.Comment, error) {
	q := s.commentsCol().
		Where("dream_id", "==", string(dreamID)).
		OrderBy("created_at", firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Comment
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListCommentsByDream: %w", err)
		}

		var doc commentDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode commentDoc: %w", err)
		}

		out = append(out, &domain.Comment{
			ID:        domain.CommentID(snap.Ref.ID),
			DreamID:   dreamID,
			UserID:    domain.UserID(doc.UserID),
			Text:      doc.Text,
			CreatedAt: doc.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) DeleteComment(ctx context.Context, id domain.CommentID) error {
	_, err := s.commentDoc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("firestore DeleteComment: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// ReactionStore implementation
// ─────────────────────────────────────────

func (s *Store) SetReaction(ctx context.Context, r *domain.Reaction) error {
	doc := reactionDoc{
		Kind:      string(r.Kind),
		DreamID:   string(r.DreamID),
		UserID:    string(r.UserID),
		CreatedAt: r.CreatedAt,
	}

	// Deterministic doc ID makes SetReaction idempotent.
	_, err := s.reactionDoc(r.Kind, r.DreamID, r.UserID).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore SetReaction: %w", err)
	}
	return nil
}

func (s *Store) ClearReaction(ctx context.Context, kind domain.ReactionKind, dreamID domain.DreamID, userID domain.UserID) error {
	_, err := s.reactionDoc(kind, dreamID, userID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("firestore ClearReaction: %w", err)
	}
	return nil
}

func (s *Store) HasReaction(ctx context.Context, kind domain.ReactionKind, dreamID domain.DreamID, userID domain.UserID) (bool, error) {
	_, err := s.reactionDoc(kind, dreamID, userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("firestore HasReaction: %w", err)
	}
	return true, nil
}

func (s *Store) CountReactions(ctx context.Context, kind domain.ReactionKind, dreamID domain.DreamID) (int, error) {
	iter := s.reactionsCol().
		Where("kind", "==", string(kind)).
		Where("dream_id", "==", string(dreamID)).
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return 0, fmt.Errorf("firestore CountReactions: %w", err)
		}
		count++
	}
	return count, nil
}

func (s *Store) ListReactionsByUser(ctx context.Context, kind domain.ReactionKind, userID domain.UserID) ([]*domain.Reaction, error) {
	iter := s.reactionsCol().
		Where("kind", "==", string(kind)).
		Where("user_id", "==", string(userID)).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var out []*domain.Reaction
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListReactionsByUser: %w", err)
		}

		var doc reactionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode reactionDoc: %w", err)
		}

		out = append(out, &domain.Reaction{
			Kind:      domain.ReactionKind(doc.Kind),
			DreamID:   domain.DreamID(doc.DreamID),
			UserID:    domain.UserID(doc.UserID),
			CreatedAt: doc.CreatedAt,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// NoteStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateNote(ctx context.Context, note *domain.Note) error {
	doc := noteDoc{
		UserID:    string(note.UserID),
		Title:     note.Title,
		Body:      note.Body,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}

	_, err := s.noteDoc(note.ID).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore CreateNote: %w", err)
	}
	return nil
}

func (s *Store) GetNote(ctx context.Context, id domain.NoteID) (*domain.Note, error) {
	snap, err := s.noteDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetNote: %w", err)
	}

	var doc noteDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetNote decode: %w", err)
	}

	return &domain.Note{
		ID:        id,
		UserID:    domain.UserID(doc.UserID),
		Title:     doc.Title,
		Body:      doc.Body,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (s *Store) UpdateNote(ctx context.Context, note *domain.Note) error {
	doc := noteDoc{
		UserID:    string(note.UserID),
		Title:     note.Title,
		Body:      note.Body,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}

	_, err := s.noteDoc(note.ID).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore UpdateNote: %w", err)
	}
	return nil
}

func (s *Store) DeleteNote(ctx context.Context, id domain.NoteID) error {
	_, err := s.noteDoc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("firestore DeleteNote: %w", err)
	}
	return nil
}

func (s *Store) ListNotesByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Note, error) {
	q := s.notesCol().
		Where("user_id", "==", string(userID)).
		OrderBy("updated_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Note
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListNotesByUser: %w", err)
		}

		var doc noteDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode noteDoc: %w", err)
		}

		out = append(out, &domain.Note{
			ID:        domain.NoteID(snap.Ref.ID),
			UserID:    domain.UserID(doc.UserID),
			Title:     doc.Title,
			Body:      doc.Body,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// FriendStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateFriendRequest(ctx context.Context, req *domain.FriendRequest) error {
	doc := friendRequestDoc{
		FromUserID:  string(req.FromUserID),
		ToUserID:    string(req.ToUserID),
		Status:      string(req.Status),
		CreatedAt:   req.CreatedAt,
		RespondedAt: req.RespondedAt,
	}

	_, err := s.friendRequestDoc(req.ID).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore CreateFriendRequest: %w", err)
	}
	return nil
}

func (s *Store) GetFriendRequest(ctx context.Context, id domain.FriendRequestID) (*domain.FriendRequest, error) {
	snap, err := s.friendRequestDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetFriendRequest: %w", err)
	}

	var doc friendRequestDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetFriendRequest decode: %w", err)
	}

	return &domain.FriendRequest{
		ID:          id,
		FromUserID:  domain.UserID(doc.FromUserID),
		ToUserID:    domain.UserID(doc.ToUserID),
		Status:      domain.FriendRequestStatus(doc.Status),
		CreatedAt:   doc.CreatedAt,
		RespondedAt: doc.RespondedAt,
	}, nil
}

func (s *Store) UpdateFriendRequest(ctx context.Context, req *domain.FriendRequest) error {
	doc := friendRequestDoc{
		FromUserID:  string(req.FromUserID),
		ToUserID:    string(req.ToUserID),
		Status:      string(req.Status),
		CreatedAt:   req.CreatedAt,
		RespondedAt: req.RespondedAt,
	}

	_, err := s.friendRequestDoc(req.ID).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore UpdateFriendRequest: %w", err)
	}
	return nil
}

// ListFriendRequestsForUser returns requests where the user is sender
// or recipient, optionally filtered by status. Two queries, merged.
func (s *Store) ListFriendRequestsForUser(ctx context.Context, userID domain.UserID, stat domain.FriendRequestStatus) ([]*domain.FriendRequest, error) {
	sent := s.friendRequestsCol().Where("from_user_id", "==", string(userID))
	received := s.friendRequestsCol().Where("to_user_id", "==", string(userID))
	if stat != "" {
		sent = sent.Where("status", "==", string(stat))
		received = received.Where("status", "==", string(stat))
	}

	var out []*domain.FriendRequest
	for _, q := range []firestore.Query{sent, received} {
		iter := q.Documents(ctx)

		for {
			snap, err := iter.Next()
			if err != nil {
				if err == iterator.Done {
					break
				}
				iter.Stop()
				return nil, fmt.Errorf("firestore ListFriendRequestsForUser: %w", err)
			}

			var doc friendRequestDoc
			if err := snap.DataTo(&doc); err != nil {
				iter.Stop()
				return nil, fmt.Errorf("decode friendRequestDoc: %w", err)
			}

			out = append(out, &domain.FriendRequest{
				ID:          domain.FriendRequestID(snap.Ref.ID),
				FromUserID:  domain.UserID(doc.FromUserID),
				ToUserID:    domain.UserID(doc.ToUserID),
				Status:      domain.FriendRequestStatus(doc.Status),
				CreatedAt:   doc.CreatedAt,
				RespondedAt: doc.RespondedAt,
			})
		}
		iter.Stop()
	}
	return out, nil
}
