package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

// ListKey is the structured cache key for one page of a dream listing.
// Every dimension that changes result identity is part of the key: the
// list kind, the scoping user, the page size, the pagination cursor and
// the tag filters. Tags are sorted before composing so {a,b} and {b,a}
// land on the same entry.
type ListKey struct {
	Kind     domain.ListKind
	UserID   domain.UserID
	PageSize int
	Cursor   string
	Tags     string // sorted, comma-joined
}

// String renders the final map key.
// list|<KIND>|<USER>|<SIZE>|<CURSOR>|<TAGS>
func (k ListKey) String() string {
	return fmt.Sprintf("list|%s|%s|%d|%s|%s", k.Kind, k.UserID, k.PageSize, k.Cursor, k.Tags)
}

// BuildListKey normalizes a DreamQuery into its cache key.
func BuildListKey(q domain.DreamQuery) ListKey {
	tags := make([]string, len(q.Tags))
	copy(tags, q.Tags)
	sort.Strings(tags)

	return ListKey{
		Kind:     q.Kind,
		UserID:   q.UserID,
		PageSize: q.PageSize,
		Cursor:   q.Cursor,
		Tags:     strings.Join(tags, ","),
	}
}

// fullListKey keys the whole-collection slot for a (kind, user) pair.
func fullListKey(kind domain.ListKind, userID domain.UserID) string {
	return fmt.Sprintf("all|%s|%s", kind, userID)
}
