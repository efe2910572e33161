// Package models defines core data structures for documents, conversations, and answers.
package models

import "time"

// Document represents a stored document. Content is the full decoded text.
type Document struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Content    string    `json:"content,omitempty" db:"content"`
	FileType   string    `json:"file_type" db:"file_type"`
	FileSize   int64     `json:"file_size" db:"file_size"`
	SourcePath string    `json:"source_path,omitempty" db:"source_path"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentChunk represents a chunk of a document, used for semantic indexing.
type DocumentChunk struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Content    string    `json:"content" db:"content"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	Embedding  []float32 `json:"-" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DocumentInput is the input for ingesting one document.
type DocumentInput struct {
	Name       string `json:"name"`
	Content    string `json:"content"`
	FileType   string `json:"file_type,omitempty"`
	FileSize   int64  `json:"file_size,omitempty"`
	SourcePath string `json:"source_path,omitempty"`
}

// IngestResult is returned after a document has been chunked, embedded, and stored.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
}
