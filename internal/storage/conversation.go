package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hyperjump/wali/internal/models"
)

// SaveExchange persists one question/answer turn in a single transaction: it finds or
// creates the conversation, appends the user and assistant messages with the same
// timestamp, and bumps the conversation's updated_at. Returns the conversation ID.
func (s *SQLiteStorage) SaveExchange(ctx context.Context, ex *models.Exchange) (string, error) {
	const op = "save exchange"
	at := ex.At
	if at.IsZero() {
		at = time.Now()
	}
	sources := ex.Sources
	if sources == nil {
		sources = []string{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return "", wrap(op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", wrap(op, err)
	}
	defer tx.Rollback()

	convID := ex.ConversationID
	exists := false
	if convID != "" {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM conversations WHERE id = ?`, convID).Scan(&one)
		switch {
		case err == nil:
			exists = true
		case !errors.Is(err, sql.ErrNoRows):
			return "", wrap(op, err)
		}
	} else {
		convID = uuid.New().String()
	}

	if exists {
		if _, err := tx.ExecContext(ctx, `UPDATE conversations SET updated_at = ? WHERE id = ?`, at, convID); err != nil {
			return "", wrap(op, err)
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO conversations (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			convID, ex.Title, at, at,
		); err != nil {
			return "", wrap(op, err)
		}
	}

	insert := `INSERT INTO messages (id, conversation_id, role, content, sources, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insert,
		uuid.New().String(), convID, models.RoleUser, ex.Question, nil, at,
	); err != nil {
		return "", wrap(op+": user message", err)
	}
	if _, err := tx.ExecContext(ctx, insert,
		uuid.New().String(), convID, models.RoleAssistant, ex.Answer, string(sourcesJSON), at,
	); err != nil {
		return "", wrap(op+": assistant message", err)
	}

	if err := tx.Commit(); err != nil {
		return "", wrap(op+": commit", err)
	}
	return convID, nil
}

// GetConversation returns a conversation by ID.
func (s *SQLiteStorage) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var c models.Conversation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?`, id,
	).Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("get conversation", "conversation", id)
	}
	if err != nil {
		return nil, wrap("get conversation", err)
	}
	return &c, nil
}

// ListConversations returns the most recently updated conversations first.
func (s *SQLiteStorage) ListConversations(ctx context.Context, limit int) ([]*models.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, created_at, updated_at FROM conversations
		 ORDER BY updated_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, wrap("list conversations", err)
	}
	defer rows.Close()

	convs := make([]*models.Conversation, 0)
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, wrap("list conversations", err)
		}
		convs = append(convs, &c)
	}
	return convs, wrap("list conversations", rows.Err())
}

// ListMessages returns a conversation's messages oldest first. Messages of one turn
// share a timestamp and keep insertion order.
func (s *SQLiteStorage) ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, sources, created_at FROM messages
		 WHERE conversation_id = ? ORDER BY created_at ASC, rowid ASC`, conversationID)
	if err != nil {
		return nil, wrap("list messages", err)
	}
	defer rows.Close()

	msgs := make([]*models.Message, 0)
	for rows.Next() {
		var m models.Message
		var sources sql.NullString
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &sources, &m.CreatedAt); err != nil {
			return nil, wrap("list messages", err)
		}
		if sources.Valid && sources.String != "" {
			if err := json.Unmarshal([]byte(sources.String), &m.Sources); err != nil {
				return nil, wrap("list messages: decode sources", err)
			}
		}
		msgs = append(msgs, &m)
	}
	return msgs, wrap("list messages", rows.Err())
}

// DeleteConversation removes a conversation and, by cascade, its messages.
func (s *SQLiteStorage) DeleteConversation(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return wrap("delete conversation", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("delete conversation", "conversation", id)
	}
	return nil
}
