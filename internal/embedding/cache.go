package embedding

import (
	"container/list"
	"context"
	"crypto/sha256"
	"sync"

	"github.com/hyperjump/wali/internal/models"
)

// cacheKey is the SHA-256 of a passage, so long chunks are not kept twice in memory.
type cacheKey [sha256.Size]byte

func keyOf(text string) cacheKey { return sha256.Sum256([]byte(text)) }

// EmbeddingCache is an LRU cache for embeddings keyed by passage digest.
type EmbeddingCache struct {
	capacity int
	cache    map[cacheKey]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key   cacheKey
	value []float32
}

// NewEmbeddingCache creates a new cache with the given capacity.
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &EmbeddingCache{
		capacity: capacity,
		cache:    make(map[cacheKey]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the cached embedding for text if present.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	key := keyOf(text)
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value, true
	}
	return nil, false
}

// Set stores the embedding for text, evicting the least recently used entry at capacity.
func (c *EmbeddingCache) Set(text string, value []float32) {
	key := keyOf(text)
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	entry := &cacheEntry{key: key, value: value}
	elem := c.lru.PushFront(entry)
	c.cache[key] = elem

	for c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.cache, oldest.Value.(*cacheEntry).key)
	}
}

// Len returns the number of cached embeddings.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// CachingEmbedder serves repeated texts from an LRU cache and forwards misses
// to the wrapped embedder in one batch.
type CachingEmbedder struct {
	inner Embedder
	cache *EmbeddingCache
}

var _ Embedder = (*CachingEmbedder)(nil)

// NewCachingEmbedder wraps inner with a cache of the given capacity.
func NewCachingEmbedder(inner Embedder, capacity int) *CachingEmbedder {
	return &CachingEmbedder{inner: inner, cache: NewEmbeddingCache(capacity)}
}

// Model returns the wrapped embedder's model.
func (e *CachingEmbedder) Model() string { return e.inner.Model() }

// Embed returns the embedding of a single text.
func (e *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, e, text)
}

// EmbedBatch returns cached vectors where available and embeds the rest.
func (e *CachingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missTexts []string
	var missPos []int
	for i, t := range texts {
		if v, ok := e.cache.Get(t); ok {
			out[i] = v
			continue
		}
		missTexts = append(missTexts, t)
		missPos = append(missPos, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}
	got, err := e.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(got) != len(missTexts) {
		return nil, &models.EmptyResultError{Index: len(got)}
	}
	for j, v := range got {
		if len(v) == 0 {
			return nil, &models.EmptyResultError{Index: missPos[j]}
		}
		out[missPos[j]] = v
		e.cache.Set(missTexts[j], v)
	}
	return out, nil
}
