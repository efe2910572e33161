package models

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation groups an ordered sequence of messages.
type Conversation struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Message is one turn of a conversation. Sources lists the document names an
// assistant answer was grounded on; user messages carry none.
type Message struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	Role           string    `json:"role" db:"role"`
	Content        string    `json:"content" db:"content"`
	Sources        []string  `json:"sources,omitempty" db:"sources"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Exchange is one question/answer turn to persist atomically.
type Exchange struct {
	ConversationID string
	Title          string
	Question       string
	Answer         string
	Sources        []string
	At             time.Time
}

// ConversationDetail is a conversation together with its messages.
type ConversationDetail struct {
	Conversation *Conversation `json:"conversation"`
	Messages     []*Message    `json:"messages"`
}
