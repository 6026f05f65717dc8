package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the default number of query embeddings kept in
// memory. Question sets repeat heavily across claims about the same topic.
const DefaultCacheSize = 1024

// CachedEmbedder wraps an Embedder with an in-memory LRU cache keyed by
// model and text.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner with an LRU cache of the given size.
func NewCachedEmbedder(inner Embedder, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(c.inner.ModelName() + "\x00" + text))
	return hex.EncodeToString(h[:])
}

// Embed returns a cached embedding when available.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vec)
	return vec, nil
}

// EmbedBatch fills cache hits locally and forwards only misses to the
// inner embedder.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		if vec, ok := c.cache.Get(c.cacheKey(text)); ok {
			results[i] = vec
		} else {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, text)
		}
	}

	if len(missTexts) > 0 {
		vecs, err := c.inner.EmbedBatch(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		for j, vec := range vecs {
			results[missIdx[j]] = vec
			c.cache.Add(c.cacheKey(missTexts[j]), vec)
		}
	}

	return results, nil
}

// Dimensions returns the inner embedder's dimension.
func (c *CachedEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

// ModelName returns the inner embedder's model identifier.
func (c *CachedEmbedder) ModelName() string {
	return c.inner.ModelName()
}

// Available reports whether the inner embedder is reachable.
func (c *CachedEmbedder) Available(ctx context.Context) bool {
	return c.inner.Available(ctx)
}

// Close purges the cache and closes the inner embedder.
func (c *CachedEmbedder) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}
