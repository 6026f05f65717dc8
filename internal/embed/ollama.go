package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
)

// ollamaEmbedRequest is the /api/embed request body. Input is a string or
// a list of strings.
type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

// ollamaEmbedResponse is the /api/embed response body.
type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// OllamaEmbedder generates embeddings using Ollama's HTTP API.
type OllamaEmbedder struct {
	client *http.Client
	config OllamaConfig

	mu     sync.RWMutex
	closed bool
	dims   int
}

var _ Embedder = (*OllamaEmbedder)(nil)

// NewOllamaEmbedder creates an Ollama embedding client and probes the
// server to detect the embedding dimension.
func NewOllamaEmbedder(ctx context.Context, cfg OllamaConfig) (*OllamaEmbedder, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	e := &OllamaEmbedder{
		client: &http.Client{},
		config: cfg,
		dims:   cfg.Dimensions,
	}

	if !cfg.SkipHealthCheck && e.dims == 0 {
		probeCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		dims, err := e.detectDimensions(probeCtx)
		if err != nil {
			return nil, o4terrors.Wrap(o4terrors.ErrCodeEmbeddingFailed,
				fmt.Sprintf("probing embedding model %s", cfg.Model), err)
		}
		e.dims = dims
	}
	if e.dims == 0 {
		e.dims = DefaultDimensions
	}

	return e, nil
}

// detectDimensions embeds a probe string and measures the vector length.
func (e *OllamaEmbedder) detectDimensions(ctx context.Context) (int, error) {
	vecs, err := e.doEmbed(ctx, []string{"dimension detection"})
	if err != nil {
		return 0, err
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return 0, fmt.Errorf("empty embedding returned")
	}
	return len(vecs[0]), nil
}

// Embed generates an embedding for a single text. Empty input yields a
// zero vector without calling the API.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.isClosed() {
		return nil, fmt.Errorf("embedder is closed")
	}
	if strings.TrimSpace(text) == "" {
		return make([]float32, e.dims), nil
	}

	vecs, err := e.embedWithRetry(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts, batching requests
// to the server. Empty texts map to zero vectors.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.isClosed() {
		return nil, fmt.Errorf("embedder is closed")
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	type indexedText struct {
		idx  int
		text string
	}
	var nonEmpty []indexedText
	results := make([][]float32, len(texts))

	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			results[i] = make([]float32, e.dims)
		} else {
			nonEmpty = append(nonEmpty, indexedText{i, text})
		}
	}

	for start := 0; start < len(nonEmpty); start += e.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+e.config.BatchSize, len(nonEmpty))
		batch := nonEmpty[start:end]
		batchTexts := make([]string, len(batch))
		for i, it := range batch {
			batchTexts[i] = it.text
		}

		vecs, err := e.embedWithRetry(ctx, batchTexts)
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d: %w", start, end, err)
		}
		for i, vec := range vecs {
			results[batch[i].idx] = vec
		}
	}

	return results, nil
}

// embedWithRetry retries transient failures with exponential backoff.
func (e *OllamaEmbedder) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error

	for attempt := 0; attempt < e.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100<<attempt) * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
		vecs, err := e.doEmbed(reqCtx, texts)
		cancel()

		if err == nil {
			return vecs, nil
		}
		lastErr = err

		slog.Debug("embedding_attempt_failed",
			"attempt", attempt+1,
			"texts", len(texts),
			"error", err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", e.config.MaxRetries, lastErr)
}

// doEmbed performs a single /api/embed request.
func (e *OllamaEmbedder) doEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	var input any
	if len(texts) == 1 {
		input = texts[0]
	} else {
		input = texts
	}

	body, err := json.Marshal(ollamaEmbedRequest{Model: e.config.Model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.Host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	vecs := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		vec := make([]float32, len(emb))
		for j, v := range emb {
			vec[j] = float32(v)
		}
		vecs[i] = Normalize(vec)
	}
	return vecs, nil
}

// Dimensions returns the embedding dimension.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dims
}

// ModelName returns the model identifier.
func (e *OllamaEmbedder) ModelName() string {
	return e.config.Model
}

// Available checks whether the Ollama server responds.
func (e *OllamaEmbedder) Available(ctx context.Context) bool {
	if e.isClosed() {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.config.Host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Close releases resources.
func (e *OllamaEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.client.CloseIdleConnections()
	return nil
}

func (e *OllamaEmbedder) isClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}
