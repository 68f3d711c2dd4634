// Package llm provides the embedding and completion gateways. Two providers
// are supported: any OpenAI-compatible HTTP API and Google Gemini through its
// official SDK.
package llm

import (
	"context"
	"fmt"

	"nyayamitra-backend/config"
	"nyayamitra-backend/logger"
)

// Embedder turns texts into vectors. Results are positional: result[i] is
// the embedding of texts[i]. A provider that cannot embed every input must
// fail the whole call.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CompletionOptions tune a single completion call.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}

// TokenUsage reports provider-side token accounting for one call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the text produced for a prompt plus its usage accounting.
type Completion struct {
	Text  string
	Usage TokenUsage
}

// Completer generates an answer from a system policy and a user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts CompletionOptions) (*Completion, error)
}

// NewFromConfig builds the provider selected by LLM_PROVIDER. A single client
// serves as both Embedder and Completer.
func NewFromConfig(ctx context.Context, cfg *config.Config, log *logger.Logger) (Embedder, Completer, error) {
	switch cfg.Provider {
	case "gemini":
		client, err := NewGemini(ctx, log, GeminiConfig{
			APIKey:     cfg.GeminiAPIKey,
			EmbedModel: cfg.GeminiEmbedModel,
			ChatModel:  cfg.GeminiChatModel,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	case "openai":
		client, err := NewOpenAI(log, OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			EmbedModel: cfg.OpenAIEmbedModel,
			ChatModel:  cfg.OpenAIChatModel,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
