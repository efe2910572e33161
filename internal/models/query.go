package models

import (
	"fmt"
	"strings"
)

// AskRequest is a question, optionally continuing an existing conversation.
type AskRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Validate trims the question and rejects an empty one.
func (q *AskRequest) Validate() error {
	q.Question = strings.TrimSpace(q.Question)
	q.ConversationID = strings.TrimSpace(q.ConversationID)
	if q.Question == "" {
		return fmt.Errorf("%w: question cannot be empty", ErrInvalidInput)
	}
	return nil
}

// Validate trims the name and rejects empty names or blank content.
func (in *DocumentInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: document name cannot be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: document %q has no text content", ErrInvalidInput, in.Name)
	}
	return nil
}
