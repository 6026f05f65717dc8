package embed

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder records how many texts reach the backend.
type countingEmbedder struct {
	calls atomic.Int64
	dims  int
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	vec := make([]float32, c.dims)
	for i, r := range text {
		vec[i%c.dims] += float32(r)
	}
	return Normalize(vec), nil
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := c.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int                    { return c.dims }
func (c *countingEmbedder) ModelName() string                  { return "counting-test" }
func (c *countingEmbedder) Available(_ context.Context) bool   { return true }
func (c *countingEmbedder) Close() error                       { return nil }

func TestCachedEmbedder_HitAvoidsBackend(t *testing.T) {
	inner := &countingEmbedder{dims: 8}
	cached, err := NewCachedEmbedder(inner, 16)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := cached.Embed(ctx, "vacina causa autismo")
	require.NoError(t, err)

	second, err := cached.Embed(ctx, "vacina causa autismo")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestCachedEmbedder_BatchMixesHitsAndMisses(t *testing.T) {
	inner := &countingEmbedder{dims: 8}
	cached, err := NewCachedEmbedder(inner, 16)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = cached.Embed(ctx, "a")
	require.NoError(t, err)

	vecs, err := cached.EmbedBatch(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	// "a" was cached so only "b" and "c" hit the backend.
	assert.Equal(t, int64(3), inner.calls.Load())
}

func TestNormalize(t *testing.T) {
	vec := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)

	zero := Normalize([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}

func TestDot(t *testing.T) {
	a := Normalize([]float32{1, 0})
	b := Normalize([]float32{1, 0})
	c := Normalize([]float32{0, 1})

	assert.InDelta(t, 1.0, Dot(a, b), 1e-6)
	assert.InDelta(t, 0.0, Dot(a, c), 1e-6)
}
