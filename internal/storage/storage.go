// Package storage defines the durable store for documents, chunks, conversations and settings.
package storage

import (
	"context"

	"github.com/hyperjump/wali/internal/models"
)

// Storage defines persistence operations. Every failure is a *models.StorageError;
// missing rows additionally match models.ErrNotFound.
type Storage interface {
	// Document operations
	CreateDocumentWithChunks(ctx context.Context, doc *models.Document, chunks []*models.DocumentChunk) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	GetDocumentBySourcePath(ctx context.Context, path string) (*models.Document, error)
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error

	// Chunk operations
	GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.DocumentChunk, error)

	// Conversation operations
	SaveExchange(ctx context.Context, ex *models.Exchange) (string, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListConversations(ctx context.Context, limit int) ([]*models.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error)
	DeleteConversation(ctx context.Context, id string) error

	// Settings
	GetSetting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
