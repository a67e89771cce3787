package webintel

import "time"

// Message roles used by convention. Role values are not validated; any
// string is accepted.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents one entry in a conversation transcript.
type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

// Turn is a role/content pair used to seed a query's conversational
// history.
type Turn struct {
	Role    string
	Content string
}

// Session represents one conversation bound to a content source. Messages
// are strictly append-ordered; UpdatedAt advances with each append. JSON
// tags match the persisted session schema.
type Session struct {
	ID            string         `json:"session_id"`
	Messages      []Message      `json:"messages"`
	ContextSource string         `json:"context_source"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Metadata      map[string]any `json:"metadata"`
}

// NewSession returns an empty session with the given id.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddMessage appends a message stamped with the current time and advances
// the session's UpdatedAt.
func (s *Session) AddMessage(role, content string, metadata map[string]any) {
	now := time.Now()
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
		Metadata:  metadata,
	})
	s.UpdatedAt = now
}

// RecentMessages returns the last n messages as role/content pairs, in
// chronological order. All messages are returned when fewer than n exist.
// The session is not mutated.
func (s *Session) RecentMessages(n int) []Turn {
	if n <= 0 || len(s.Messages) == 0 {
		return nil
	}
	start := len(s.Messages) - n
	if start < 0 {
		start = 0
	}
	turns := make([]Turn, 0, len(s.Messages)-start)
	for _, msg := range s.Messages[start:] {
		turns = append(turns, Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}
