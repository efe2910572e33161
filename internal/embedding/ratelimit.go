package embedding

import (
	"context"
	"math"

	"golang.org/x/time/rate"

	"github.com/hyperjump/wali/internal/models"
)

// RateLimitedEmbedder spaces out batch calls to the wrapped embedder.
type RateLimitedEmbedder struct {
	inner   Embedder
	limiter *rate.Limiter
}

var _ Embedder = (*RateLimitedEmbedder)(nil)

// NewRateLimitedEmbedder allows requestsPerSecond batch calls with a burst of
// at least one.
func NewRateLimitedEmbedder(inner Embedder, requestsPerSecond float64) *RateLimitedEmbedder {
	burst := int(math.Ceil(requestsPerSecond))
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedEmbedder{inner: inner, limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Model returns the wrapped embedder's model.
func (e *RateLimitedEmbedder) Model() string { return e.inner.Model() }

// Embed returns the embedding of a single text.
func (e *RateLimitedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, e, text)
}

// EmbedBatch waits for a token, then forwards the call.
func (e *RateLimitedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, &models.TransportError{Op: "embed: rate limit", Err: err}
	}
	return e.inner.EmbedBatch(ctx, texts)
}
