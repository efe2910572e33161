// Package vector provides the vector index and similarity search.
package vector

import (
	"encoding/json"
	"maps"
)

// Metadata keys every record inserted by the ingestion pipeline carries.
const (
	MetaDocumentID   = "document_id"
	MetaDocumentName = "document_name"
	MetaChunkIndex   = "chunk_index"
)

// Index defines vector storage and top-k similarity search. MemoryIndex is the
// brute-force implementation; an approximate index can satisfy the same contract.
type Index interface {
	Insert(rec Record) error
	InsertMany(recs []Record) error
	Search(query []float32, k int) []Hit
	RemoveByDocument(documentID string) int
	Clear()
	Len() int
	IsEmpty() bool
	Snapshot() ([]byte, error)
	Restore(data []byte) error
}

// Record is a stored passage with its embedding.
type Record struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Embedding []float32      `json:"embedding"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// DocumentID returns the owning document id, or "" when absent.
func (r Record) DocumentID() string {
	s, _ := r.Metadata[MetaDocumentID].(string)
	return s
}

// DocumentName returns the display name of the owning document.
func (r Record) DocumentName() (string, bool) {
	s, ok := r.Metadata[MetaDocumentName].(string)
	return s, ok && s != ""
}

// ChunkIndex returns the passage position within its document. Metadata restored
// from a snapshot holds numbers as float64.
func (r Record) ChunkIndex() (int, bool) {
	switch v := r.Metadata[MetaChunkIndex].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func (r Record) clone() Record {
	emb := make([]float32, len(r.Embedding))
	copy(emb, r.Embedding)
	return Record{ID: r.ID, Content: r.Content, Embedding: emb, Metadata: maps.Clone(r.Metadata)}
}

// Hit is a single search result. Score is the cosine similarity to the query.
type Hit struct {
	Record Record  `json:"record"`
	Score  float32 `json:"score"`
}
