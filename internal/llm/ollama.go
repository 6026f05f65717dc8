package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultOllamaHost  = "http://localhost:11434"
	defaultOllamaModel = "llama3"
)

// OllamaProvider generates text through Ollama's /api/generate endpoint.
type OllamaProvider struct {
	host   string
	model  string
	client *http.Client
}

var _ Provider = (*OllamaProvider)(nil)

// NewOllamaProvider creates an Ollama generation client.
func NewOllamaProvider(cfg Config) *OllamaProvider {
	host := cfg.BaseURL
	if host == "" {
		host = defaultOllamaHost
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{},
	}
}

// Name identifies the backend.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Generate runs a non-streaming completion.
func (p *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	return strings.TrimSpace(result.Response), nil
}

// Available probes the Ollama server.
func (p *OllamaProvider) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}
