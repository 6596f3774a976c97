// Package social covers the interactions around shared dreams:
// comments, likes, favorites, private notes and friend connections.
package social

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/berningb/dream-speak-sub000/internal/backoff"
	"github.com/berningb/dream-speak-sub000/internal/cache"
	"github.com/berningb/dream-speak-sub000/internal/domain"
	"github.com/berningb/dream-speak-sub000/internal/observability"
)

type Service struct {
	dreams    domain.DreamStore
	comments  domain.CommentStore
	reactions domain.ReactionStore
	notes     domain.NoteStore
	friends   domain.FriendStore
	cache     *cache.Cache
	now       func() time.Time
}

func NewService(
	dreamStore domain.DreamStore,
	commentStore domain.CommentStore,
	reactionStore domain.ReactionStore,
	noteStore domain.NoteStore,
	friendStore domain.FriendStore,
	c *cache.Cache,
) *Service {
	return &Service{
		dreams:    dreamStore,
		comments:  commentStore,
		reactions: reactionStore,
		notes:     noteStore,
		friends:   friendStore,
		cache:     c,
		now:       time.Now,
	}
}

// ─────────────────────────────────────────
// Comments
// ─────────────────────────────────────────

func (s *Service) AddComment(ctx context.Context, dreamID domain.DreamID, text string) (*domain.Comment, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrBadParams
	}

	if _, err := s.commentableDream(ctx, dreamID, userID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:        domain.CommentID(uuid.NewString()),
		DreamID:   dreamID,
		UserID:    userID,
		Text:      text,
		CreatedAt: s.now(),
	}

	err := backoff.Do(ctx, backoff.DefaultAttempts, backoff.DefaultBase, func(ctx context.Context) error {
		return s.comments.AddComment(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	observability.FromContext(ctx).Info("comment added",
		zap.String("dream_id", string(dreamID)),
		zap.String("user_id", string(userID)),
	)
	return comment, nil
}

func (s *Service) ListComments(ctx context.Context, dreamID domain.DreamID, limit int) ([]*domain.Comment, error) {
	userID, _ := domain.UserFromCtx(ctx)
	if _, err := s.commentableDream(ctx, dreamID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.comments.ListCommentsByDream(ctx, dreamID, limit)
}

// DeleteComment removes a comment. The comment author and the dream
// owner may both delete.
func (s *Service) DeleteComment(ctx context.Context, id domain.CommentID) error {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return domain.ErrNotAuthenticated
	}

	comment, err := s.comments.GetComment(ctx, id)
	if err != nil {
		return err
	}

	if comment.UserID != userID {
		dream, err := s.dreams.GetDream(ctx, comment.DreamID)
		if err != nil {
			return err
		}
		if dream.UserID != userID {
			return domain.ErrForbidden
		}
	}

	return backoff.Do(ctx, backoff.DefaultAttempts, backoff.DefaultBase, func(ctx context.Context) error {
		return s.comments.DeleteComment(ctx, id)
	})
}

// ─────────────────────────────────────────
// Likes & favorites
// ─────────────────────────────────────────

func (s *Service) SetReaction(ctx context.Context, kind domain.ReactionKind, dreamID domain.DreamID) error {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return domain.ErrNotAuthenticated
	}

	if _, err := s.commentableDream(ctx, dreamID, userID); err != nil {
		return err
	}

	reaction := &domain.Reaction{
		Kind:      kind,
		DreamID:   dreamID,
		UserID:    userID,
		CreatedAt: s.now(),
	}
	return backoff.Do(ctx, backoff.DefaultAttempts, backoff.DefaultBase, func(ctx context.Context) error {
		return s.reactions.SetReaction(ctx, reaction)
	})
}

func (s *Service) ClearReaction(ctx context.Context, kind domain.ReactionKind, dreamID domain.DreamID) error {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return domain.ErrNotAuthenticated
	}
	return backoff.Do(ctx, backoff.DefaultAttempts, backoff.DefaultBase, func(ctx context.Context) error {
		return s.reactions.ClearReaction(ctx, kind, dreamID, userID)
	})
}

func (s *Service) CountReactions(ctx context.Context, kind domain.ReactionKind, dreamID domain.DreamID) (int, error) {
	return s.reactions.CountReactions(ctx, kind, dreamID)
}

// ListFavoriteDreams resolves the user's favorites into dreams,
// dropping any that have since been deleted or made private.
func (s *Service) ListFavoriteDreams(ctx context.Context) ([]*domain.Dream, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	favs, err := s.reactions.ListReactionsByUser(ctx, domain.ReactionFavorite, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Dream, 0, len(favs))
	for _, f := range favs {
		dream, hit := s.cache.GetDream(f.DreamID)
		if !hit {
			dream, err = s.dreams.GetDream(ctx, f.DreamID)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			s.cache.PutDream(dream)
		}
		if dream.Public || dream.UserID == userID {
			out = append(out, dream)
		}
	}
	return out, nil
}

// ─────────────────────────────────────────
// Notes
// ─────────────────────────────────────────

type NoteInput struct {
	Title string
	Body  string
}

func (s *Service) CreateNote(ctx context.Context, in NoteInput) (*domain.Note, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	if in.Title == "" && in.Body == "" {
		return nil, domain.ErrBadParams
	}

	now := s.now()
	note := &domain.Note{
		ID:        domain.NoteID(uuid.NewString()),
		UserID:    userID,
		Title:     in.Title,
		Body:      in.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := backoff.Do(ctx, backoff.DefaultAttempts, backoff.DefaultBase, func(ctx context.Context) error {
		return s.notes.CreateNote(ctx, note)
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Service) UpdateNote(ctx context.Context, id domain.NoteID, in NoteInput) (*domain.Note, error) {
	note, err := s.ownedNote(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *note
	updated.Title = in.Title
	updated.Body = in.Body
	updated.UpdatedAt = s.now()

	err = backoff.Do(ctx, backoff.DefaultAttempts, backoff.DefaultBase, func(ctx context.Context) error {
		return s.notes.UpdateNote(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) DeleteNote(ctx context.Context, id domain.NoteID) error {
	if _, err := s.ownedNote(ctx, id); err != nil {
		return err
	}
	return backoff.Do(ctx, backoff.DefaultAttempts, backoff.DefaultBase, func(ctx context.Context) error {
		return s.notes.DeleteNote(ctx, id)
	})
}

func (s *Service) ListNotes(ctx context.Context, limit int) ([]*domain.Note, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	if limit <= 0 {
		limit = 50
	}
	return s.notes.ListNotesByUser(ctx, userID, limit)
}

// ─────────────────────────────────────────
// Friend requests
// ─────────────────────────────────────────

func (s *Service) SendFriendRequest(ctx context.Context, to domain.UserID) (*domain.FriendRequest, error) {
	from, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	if to == "" || to == from {
		return nil, domain.ErrBadParams
	}

	// One live request per pair, in either direction.
	pending, err := s.friends.ListFriendRequestsForUser(ctx, from, "")
	if err != nil {
		return nil, err
	}
	for _, r := range pending {
		if r.Status == domain.FriendRequestDeclined {
			continue
		}
		if (r.FromUserID == from && r.ToUserID == to) || (r.FromUserID == to && r.ToUserID == from) {
			return nil, domain.ErrAlreadyExists
		}
	}

	req := &domain.FriendRequest{
		ID:         domain.FriendRequestID(uuid.NewString()),
		FromUserID: from,
		ToUserID:   to,
		Status:     domain.FriendRequestPending,
		CreatedAt:  s.now(),
	}
	err = backoff.Do(ctx, backoff.DefaultAttempts, backoff.DefaultBase, func(ctx context.Context) error {
		return s.friends.CreateFriendRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// RespondFriendRequest accepts or declines a pending request addressed
// to the current user.
func (s *Service) RespondFriendRequest(ctx context.Context, id domain.FriendRequestID, accept bool) (*domain.FriendRequest, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	req, err := s.friends.GetFriendRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ToUserID != userID {
		return nil, domain.ErrForbidden
	}
	if req.Status != domain.FriendRequestPending {
		return nil, domain.ErrBadParams
	}

	updated := *req
	if accept {
		updated.Status = domain.FriendRequestAccepted
	} else {
		updated.Status = domain.FriendRequestDeclined
	}
	respondedAt := s.now()
	updated.RespondedAt = &respondedAt

	err = backoff.Do(ctx, backoff.DefaultAttempts, backoff.DefaultBase, func(ctx context.Context) error {
		return s.friends.UpdateFriendRequest(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListFriends returns the user ids connected to the current user by an
// accepted request.
func (s *Service) ListFriends(ctx context.Context) ([]domain.UserID, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	accepted, err := s.friends.ListFriendRequestsForUser(ctx, userID, domain.FriendRequestAccepted)
	if err != nil {
		return nil, err
	}

	out := make([]domain.UserID, 0, len(accepted))
	for _, r := range accepted {
		if r.FromUserID == userID {
			out = append(out, r.ToUserID)
		} else {
			out = append(out, r.FromUserID)
		}
	}
	return out, nil
}

// ListPendingRequests returns requests awaiting the current user's answer.
func (s *Service) ListPendingRequests(ctx context.Context) ([]*domain.FriendRequest, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	pending, err := s.friends.ListFriendRequestsForUser(ctx, userID, domain.FriendRequestPending)
	if err != nil {
		return nil, err
	}

	out := pending[:0]
	for _, r := range pending {
		if r.ToUserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// commentableDream loads a dream, cached when possible, and checks the
// user may interact with it (public, or their own).
func (s *Service) commentableDream(ctx context.Context, dreamID domain.DreamID, userID domain.UserID) (*domain.Dream, error) {
	dream, hit := s.cache.GetDream(dreamID)
	if !hit {
		var err error
		dream, err = s.dreams.GetDream(ctx, dreamID)
		if err != nil {
			return nil, err
		}
		s.cache.PutDream(dream)
	}
	if !dream.Public && dream.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return dream, nil
}

func (s *Service) ownedNote(ctx context.Context, id domain.NoteID) (*domain.Note, error) {
	userID, ok := domain.UserFromCtx(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	note, err := s.notes.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return note, nil
}
