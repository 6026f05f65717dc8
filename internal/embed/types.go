// Package embed provides text embedding backends for semantic retrieval.
package embed

import (
	"context"
	"math"
	"time"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. The result has
	// one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available reports whether the backend is reachable.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// Default configuration values for the Ollama backend.
const (
	DefaultOllamaHost = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultBatchSize  = 32
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 3
	DefaultDimensions = 768
)

// OllamaConfig configures the Ollama embedding client.
type OllamaConfig struct {
	Host       string
	Model      string
	BatchSize  int
	Timeout    time.Duration
	MaxRetries int

	// Dimensions skips auto-detection when non-zero.
	Dimensions int

	// SkipHealthCheck disables the startup connectivity probe, for tests.
	SkipHealthCheck bool
}

// Normalize returns the L2-normalized copy of a vector. Zero vectors are
// returned unchanged so dot products stay zero instead of NaN.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}

	inv := 1.0 / math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) * inv)
	}
	return out
}

// Dot returns the dot product of two equal-length vectors. For normalized
// vectors this is the cosine similarity.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
