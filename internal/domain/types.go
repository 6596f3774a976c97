package domain

import "time"

type UserID string
type DreamID string
type CommentID string
type NoteID string
type FriendRequestID string
type SessionID string
type MessageID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ActionType enumerates the AI-backed actions subject to daily quotas.
type ActionType string

const (
	ActionChat      ActionType = "chat"
	ActionExtract   ActionType = "extract"
	ActionInterpret ActionType = "interpret"
	ActionDescribe  ActionType = "describe"
	ActionImage     ActionType = "image"
)

// ActionTypes lists every known action in a stable order.
// New counter documents seed a zero count for each of these.
func ActionTypes() []ActionType {
	return []ActionType{ActionChat, ActionExtract, ActionInterpret, ActionDescribe, ActionImage}
}

// ValidAction reports whether t is one of the known action types.
func ValidAction(t ActionType) bool {
	switch t {
	case ActionChat, ActionExtract, ActionInterpret, ActionDescribe, ActionImage:
		return true
	}
	return false
}

type Timestamp = time.Time
