// Package llm abstracts the text generation backends used for question
// decomposition and verdicts.
package llm

import "context"

// Provider generates text completions.
type Provider interface {
	// Name identifies the backend.
	Name() string

	// Generate returns the model's completion for a prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Available reports whether the backend is reachable.
	Available(ctx context.Context) bool
}

// Config configures a provider.
type Config struct {
	// Provider is "ollama" or "openai".
	Provider string

	// Model names the generation model.
	Model string

	// BaseURL overrides the backend endpoint. For Ollama this is the
	// server host; for OpenAI-compatible servers, the API base.
	BaseURL string

	// APIKey authenticates OpenAI-compatible backends.
	APIKey string
}
