package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider generates text through the OpenAI chat completion API
// or any compatible server via BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates an OpenAI generation client.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY must be configured for the openai provider")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// Name identifies the backend.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Generate runs a single-turn chat completion.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Available reports whether the API answers a model listing call.
func (p *OpenAIProvider) Available(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}
