// Package embedding provides text embedding clients for remote backends, plus caching
// and rate limiting wrappers.
package embedding

import (
	"context"

	"github.com/hyperjump/wali/internal/models"
)

// Embedder produces vector embeddings for text. EmbedBatch returns one non-empty
// vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// embedOne is the single-text form of a batch call.
func embedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(out) != 1 || len(out[0]) == 0 {
		return nil, &models.EmptyResultError{Index: 0}
	}
	return out[0], nil
}

// checkComplete verifies that every slot of a placed batch result holds a vector.
func checkComplete(out [][]float32) error {
	for i, v := range out {
		if len(v) == 0 {
			return &models.EmptyResultError{Index: i}
		}
	}
	return nil
}
