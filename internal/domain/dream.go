package domain

import "time"

// Dream is a single recorded dream with its mood/emotion/tag metadata.
type Dream struct {
	ID     DreamID `json:"id"`
	UserID UserID  `json:"user_id"`

	Title       string `json:"title"`
	Description string `json:"description"`

	// Mood is the dreamer's overall mood on waking (e.g. "calm", "anxious").
	Mood     string   `json:"mood,omitempty"`
	Emotions []string `json:"emotions,omitempty"`
	Tags     []string `json:"tags,omitempty"`

	// Public dreams appear in the shared feed and can be liked/commented on.
	Public bool `json:"public"`

	// ImageURL points at a generated illustration, when one exists.
	ImageURL string `json:"image_url,omitempty"`

	// Interpretation holds the last AI interpretation saved for this dream.
	Interpretation string `json:"interpretation,omitempty"`

	DreamedAt time.Time `json:"dreamed_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DreamDraft is the structured result of extracting a dream from a
// chat transcript, before the user confirms and it becomes a Dream.
type DreamDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Mood        string   `json:"mood,omitempty"`
	Emotions    []string `json:"emotions,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ListKind identifies which dream listing a query targets.
type ListKind string

const (
	ListMine   ListKind = "mine"
	ListPublic ListKind = "public"
	ListByUser ListKind = "by_user"
)

// DreamQuery describes a paginated dream listing. Every field that
// changes result identity participates in cache keying.
type DreamQuery struct {
	Kind     ListKind
	UserID   UserID // requesting user for ListMine, target user for ListByUser
	Tags     []string
	PageSize int
	Cursor   string // opaque pagination token, empty for the first page
}

// DreamPage is one page of a dream listing.
type DreamPage struct {
	Dreams  []*Dream
	Cursor  string
	HasMore bool
}
