package vector

import "fmt"

// IndexType represents the type of vector index to use.
type IndexType string

// IndexTypeMemory uses in-memory brute-force cosine search.
const IndexTypeMemory IndexType = "memory"

// NewIndex creates a vector index of the specified type. A dimension of 0 lets the
// first insert fix it.
func NewIndex(indexType string, dimensions int) (Index, error) {
	switch IndexType(indexType) {
	case IndexTypeMemory, "":
		return NewMemoryIndex(dimensions)
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: memory)", indexType)
	}
}
