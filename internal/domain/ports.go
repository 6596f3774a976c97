package domain

import "context"

// DreamStore defines dream persistence.
type DreamStore interface {
	CreateDream(ctx context.Context, dream *Dream) error
	GetDream(ctx context.Context, id DreamID) (*Dream, error)
	UpdateDream(ctx context.Context, dream *Dream) error
	DeleteDream(ctx context.Context, id DreamID) error
	QueryDreams(ctx context.Context, q DreamQuery) (*DreamPage, error)
	ListAllDreamsByUser(ctx context.Context, userID UserID) ([]*Dream, error)
}

// UserStore defines profile persistence.
type UserStore interface {
	UpsertProfile(ctx context.Context, profile *UserProfile) error
	GetProfile(ctx context.Context, id UserID) (*UserProfile, error)
}

// CommentStore defines comment persistence.
type CommentStore interface {
	AddComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, id CommentID) (*Comment, error)
	ListCommentsByDream(ctx context.Context, dreamID DreamID, limit int) ([]*Comment, error)
	DeleteComment(ctx context.Context, id CommentID) error
}

// ReactionStore defines like/favorite persistence. SetReaction and
// ClearReaction are idempotent.
type ReactionStore interface {
	SetReaction(ctx context.Context, r *Reaction) error
	ClearReaction(ctx context.Context, kind ReactionKind, dreamID DreamID, userID UserID) error
	HasReaction(ctx context.Context, kind ReactionKind, dreamID DreamID, userID UserID) (bool, error)
	CountReactions(ctx context.Context, kind ReactionKind, dreamID DreamID) (int, error)
	ListReactionsByUser(ctx context.Context, kind ReactionKind, userID UserID) ([]*Reaction, error)
}

// NoteStore defines note persistence.
type NoteStore interface {
	CreateNote(ctx context.Context, note *Note) error
	GetNote(ctx context.Context, id NoteID) (*Note, error)
	UpdateNote(ctx context.Context, note *Note) error
	DeleteNote(ctx context.Context, id NoteID) error
	ListNotesByUser(ctx context.Context, userID UserID, limit int) ([]*Note, error)
}

// FriendStore defines friend-request persistence.
type FriendStore interface {
	CreateFriendRequest(ctx context.Context, req *FriendRequest) error
	GetFriendRequest(ctx context.Context, id FriendRequestID) (*FriendRequest, error)
	UpdateFriendRequest(ctx context.Context, req *FriendRequest) error
	ListFriendRequestsForUser(ctx context.Context, userID UserID, status FriendRequestStatus) ([]*FriendRequest, error)
}

// UsageStore persists per-user daily action counters.
//
// IncrementIfUnder must run the read-check-increment as one atomic
// transaction on the (user, day) counter document: two concurrent calls
// must never both consume the last allowed slot. On success it returns
// the count after the increment. When the count has reached limit it
// returns *LimitExceededError and performs no mutation.
type UsageStore interface {
	IncrementIfUnder(ctx context.Context, userID UserID, dateKey string, action ActionType, limit int) (int, error)
	GetUsage(ctx context.Context, userID UserID, dateKey string) (map[ActionType]int, error)
}

// SessionStore defines capture-session persistence.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	UpdateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id SessionID) (*Session, error)
	ListSessionsByUser(ctx context.Context, userID UserID, limit int) ([]*Session, error)
}

// MessageStore defines capture-session message persistence.
type MessageStore interface {
	AppendMessage(ctx context.Context, msg *Message) error
	GetMessagesBySession(ctx context.Context, sessionID SessionID, limit int) ([]*Message, error)
}

// AIClient defines how the application talks to the LLM service.
type AIClient interface {
	GenerateReply(ctx context.Context, userMessage string, chatCtx ChatContext) (string, error)
	ExtractDream(ctx context.Context, transcript []*Message) (*DreamDraft, error)
	InterpretDream(ctx context.Context, dream *Dream) (string, error)
	DescribeScene(ctx context.Context, dream *Dream) (string, error)
}

// ImageClient defines text-to-image generation.
type ImageClient interface {
	GenerateImage(ctx context.Context, prompt string) (imageURL string, err error)
}
