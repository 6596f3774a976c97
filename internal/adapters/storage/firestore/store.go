// Package firestore persists all application data in Cloud Firestore.
// One Store implements every storage port; collections hold flat doc
// mirrors of the domain types.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given GCP project.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Collection helpers
// ─────────────────────────────────────────

func (s *Store) dreamsCol() *firestore.CollectionRef {
	return s.client.Collection("dreams")
}

func (s *Store) dreamDoc(id domain.DreamID) *firestore.DocumentRef {
	return s.dreamsCol().Doc(string(id))
}

func (s *Store) usersCol() *firestore.CollectionRef {
	return s.client.Collection("users")
}

func (s *Store) userDoc(id domain.UserID) *firestore.DocumentRef {
	return s.usersCol().Doc(string(id))
}

func (s *Store) commentsCol() *firestore.CollectionRef {
	return s.client.Collection("comments")
}

func (s *Store) commentDoc(id domain.CommentID) *firestore.DocumentRef {
	return s.commentsCol().Doc(string(id))
}

func (s *Store) reactionsCol() *firestore.CollectionRef {
	return s.client.Collection("reactions")
}

func (s *Store) reactionDoc(kind domain.ReactionKind, dreamID domain.DreamID, userID domain.UserID) *firestore.DocumentRef {
	return s.reactionsCol().Doc(string(kind) + "_" + string(dreamID) + "_" + string(userID))
}

func (s *Store) notesCol() *firestore.CollectionRef {
	return s.client.Collection("notes")
}

func (s *Store) noteDoc(id domain.NoteID) *firestore.DocumentRef {
	return s.notesCol().Doc(string(id))
}

func (s *Store) friendRequestsCol() *firestore.CollectionRef {
	return s.client.Collection("friend_requests")
}

func (s *Store) friendRequestDoc(id domain.FriendRequestID) *firestore.DocumentRef {
	return s.friendRequestsCol().Doc(string(id))
}

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) messagesCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(sessionID).Collection("messages")
}

func (s *Store) messageDoc(sessionID domain.SessionID, msgID domain.MessageID) *firestore.DocumentRef {
	return s.messagesCol(sessionID).Doc(string(msgID))
}

func (s *Store) usageCol() *firestore.CollectionRef {
	return s.client.Collection("usage")
}

func (s *Store) usageDoc(userID domain.UserID, dateKey string) *firestore.DocumentRef {
	return s.usageCol().Doc(domain.UsageKey(userID, dateKey))
}
