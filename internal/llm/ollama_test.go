package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)

		_, _ = w.Write([]byte(`{"response":"  resposta gerada \n"}`))
	}))
	defer server.Close()

	p := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3"})
	out, err := p.Generate(context.Background(), "qualquer prompt")
	require.NoError(t, err)
	assert.Equal(t, "resposta gerada", out)
}

func TestOllamaProvider_GenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	p := NewOllamaProvider(Config{BaseURL: server.URL})
	_, err := p.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestNewProvider_Dispatch(t *testing.T) {
	p, err := NewProvider(Config{Provider: "ollama"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	p, err = NewProvider(Config{Provider: "openai", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = NewProvider(Config{Provider: "anthropic"})
	assert.Error(t, err)

	_, err = NewProvider(Config{Provider: "openai"})
	assert.Error(t, err, "openai without api key")
}
