package llm

import (
	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
)

// NewProvider builds the configured generation backend.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaProvider(cfg), nil
	case "openai":
		return NewOpenAIProvider(cfg)
	default:
		return nil, o4terrors.Newf(o4terrors.ErrCodeConfigInvalid,
			"unknown llm provider %q (want ollama or openai)", cfg.Provider)
	}
}
