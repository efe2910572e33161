package vector

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryIndex is an in-memory vector index using brute-force cosine search.
// Mutations are exclusive; concurrent searches share a read lock.
type MemoryIndex struct {
	fixedDim   int
	dimensions int
	records    []Record
	mu         sync.RWMutex
}

var _ Index = (*MemoryIndex)(nil)

// NewMemoryIndex creates an in-memory vector index. With dimensions 0 the first
// insert fixes the dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions < 0 {
		return nil, fmt.Errorf("dimensions must not be negative")
	}
	return &MemoryIndex{
		fixedDim:   dimensions,
		dimensions: dimensions,
		records:    make([]Record, 0),
	}, nil
}

// Type returns the index type identifier.
func (m *MemoryIndex) Type() string {
	return string(IndexTypeMemory)
}

// Dimensions returns the embedding dimension, or 0 if not yet fixed.
func (m *MemoryIndex) Dimensions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimensions
}

// Insert appends one record.
func (m *MemoryIndex) Insert(rec Record) error {
	return m.InsertMany([]Record{rec})
}

// InsertMany appends records. Every record is validated before any is appended,
// so a bad record leaves the index unchanged.
func (m *MemoryIndex) InsertMany(recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	dim := m.dimensions
	if dim == 0 {
		dim = len(recs[0].Embedding)
	}
	for i, rec := range recs {
		if rec.ID == "" {
			return fmt.Errorf("record %d: empty id", i)
		}
		if len(rec.Embedding) == 0 {
			return fmt.Errorf("record %s: empty embedding", rec.ID)
		}
		if len(rec.Embedding) != dim {
			return fmt.Errorf("record %s: vector dimension mismatch: got %d, expected %d", rec.ID, len(rec.Embedding), dim)
		}
	}
	m.dimensions = dim
	for _, rec := range recs {
		m.records = append(m.records, rec.clone())
	}
	return nil
}

// Search returns the top-k records by cosine similarity, highest first. Equal
// scores keep insertion order. A query of the wrong dimension scores 0 everywhere.
func (m *MemoryIndex) Search(query []float32, k int) []Hit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.records) == 0 {
		return []Hit{}
	}
	type scored struct {
		pos   int
		score float32
	}
	scores := make([]scored, len(m.records))
	for i, rec := range m.records {
		scores[i] = scored{pos: i, score: CosineSimilarity(query, rec.Embedding)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if k > len(scores) {
		k = len(scores)
	}
	hits := make([]Hit, k)
	for i := 0; i < k; i++ {
		hits[i] = Hit{Record: m.records[scores[i].pos].clone(), Score: scores[i].score}
	}
	return hits
}

// RemoveByDocument removes every record whose document_id metadata equals documentID
// and returns how many were removed.
func (m *MemoryIndex) RemoveByDocument(documentID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		if rec.DocumentID() != documentID {
			kept = append(kept, rec)
		}
	}
	removed := len(m.records) - len(kept)
	m.records = kept
	return removed
}

// Clear removes all records.
func (m *MemoryIndex) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make([]Record, 0)
	m.dimensions = m.fixedDim
}

// Len returns the number of records in the index.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// IsEmpty reports whether the index holds no records.
func (m *MemoryIndex) IsEmpty() bool {
	return m.Len() == 0
}

// Snapshot serializes the whole store.
func (m *MemoryIndex) Snapshot() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return encodeSnapshot(m.dimensions, m.records)
}

// Restore replaces the current contents with a snapshot. The snapshot is fully
// decoded before anything is swapped, so a corrupt snapshot leaves the index unchanged.
func (m *MemoryIndex) Restore(data []byte) error {
	dim, recs, err := decodeSnapshot(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fixedDim != 0 && len(recs) > 0 && dim != m.fixedDim {
		return fmt.Errorf("dimension mismatch: snapshot has %d, index expects %d", dim, m.fixedDim)
	}
	if len(recs) == 0 {
		dim = m.fixedDim
	}
	m.dimensions = dim
	m.records = recs
	return nil
}
