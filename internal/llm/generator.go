// Package llm provides generation clients that answer questions from retrieved context.
package llm

import "context"

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces an answer for an ordered list of chat messages.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
	Model() string
}
