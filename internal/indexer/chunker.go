// Package indexer provides document chunking and the ingestion pipeline.
package indexer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hyperjump/wali/internal/models"
)

// Chunker splits text into paragraph-aware, rune-bounded passages with overlap.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in characters).
// Overlap must be smaller than size, or the window would never advance.
func NewChunker(chunkSize, chunkOverlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, &models.ConfigError{Field: "chunk_size", Reason: fmt.Sprintf("must be positive, got %d", chunkSize)}
	}
	if chunkOverlap < 0 {
		return nil, &models.ConfigError{Field: "chunk_overlap", Reason: fmt.Sprintf("must not be negative, got %d", chunkOverlap)}
	}
	if chunkOverlap >= chunkSize {
		return nil, &models.ConfigError{
			Field:  "chunk_overlap",
			Reason: fmt.Sprintf("must be less than chunk_size (%d >= %d)", chunkOverlap, chunkSize),
		}
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// SplitSmart is a one-shot helper around NewChunker and Split.
func SplitSmart(text string, maxSize, overlap int) ([]string, error) {
	c, err := NewChunker(maxSize, overlap)
	if err != nil {
		return nil, err
	}
	return c.Split(text), nil
}

// Split breaks text on blank lines, drops empty paragraphs, keeps short paragraphs
// whole and cuts long ones with a sliding window.
func (c *Chunker) Split(text string) []string {
	var out []string
	for _, para := range Paragraphs(text) {
		runes := []rune(para)
		if len(runes) <= c.chunkSize {
			out = append(out, para)
			continue
		}
		out = append(out, c.window(runes)...)
	}
	return out
}

func (c *Chunker) window(runes []rune) []string {
	var out []string
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - c.chunkOverlap
	}
	return out
}

// Chunk splits text into DocumentChunks for docID, numbered in passage order.
func (c *Chunker) Chunk(docID, text string) []*models.DocumentChunk {
	passages := c.Split(text)
	if len(passages) == 0 {
		return nil
	}
	chunks := make([]*models.DocumentChunk, 0, len(passages))
	for i, p := range passages {
		chunks = append(chunks, &models.DocumentChunk{
			ID:         uuid.New().String(),
			DocumentID: docID,
			Content:    p,
			ChunkIndex: i,
		})
	}
	return chunks
}
