package domain

// Message is any message in a capture-session timeline (user or assistant).
type Message struct {
	ID        MessageID
	SessionID SessionID
	Author    Role
	Text      string
	CreatedAt Timestamp
}

// Session is one chat-guided dream capture conversation. It lasts until
// the user saves the dream or abandons the chat.
type Session struct {
	ID        SessionID
	UserID    UserID
	Title     string
	CreatedAt Timestamp
	UpdatedAt Timestamp

	// SavedDreamID is set once the conversation produced a stored dream.
	SavedDreamID DreamID
}

// ChatContext gives the LLM minimal context about the conversation.
type ChatContext struct {
	SessionID SessionID
	UserID    UserID
	History   []*Message // last N interactions
}
