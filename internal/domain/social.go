package domain

import "time"

// UserProfile is the public-facing profile of a user. Identity itself
// (credentials, sign-in) lives with the external identity provider.
type UserProfile struct {
	ID          UserID    `json:"id"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Comment is a user comment on a public dream.
type Comment struct {
	ID        CommentID `json:"id"`
	DreamID   DreamID   `json:"dream_id"`
	UserID    UserID    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ReactionKind distinguishes the two per-dream reactions a user can set.
type ReactionKind string

const (
	ReactionLike     ReactionKind = "like"
	ReactionFavorite ReactionKind = "favorite"
)

// Reaction records that a user liked or favorited a dream. At most one
// reaction per (user, dream, kind).
type Reaction struct {
	Kind      ReactionKind `json:"kind"`
	DreamID   DreamID      `json:"dream_id"`
	UserID    UserID       `json:"user_id"`
	CreatedAt time.Time    `json:"created_at"`
}

// Note is a free-form private note, separate from dreams.
type Note struct {
	ID        NoteID    `json:"id"`
	UserID    UserID    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestDeclined FriendRequestStatus = "declined"
)

// FriendRequest connects two users once accepted.
type FriendRequest struct {
	ID          FriendRequestID     `json:"id"`
	FromUserID  UserID              `json:"from_user_id"`
	ToUserID    UserID              `json:"to_user_id"`
	Status      FriendRequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	RespondedAt *time.Time          `json:"responded_at,omitempty"`
}
