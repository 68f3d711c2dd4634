package llm

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"nyayamitra-backend/logger"
)

type GeminiConfig struct {
	APIKey     string
	EmbedModel string
	ChatModel  string
}

// GeminiClient implements Embedder and Completer on the official SDK.
type GeminiClient struct {
	log    *logger.Logger
	cfg    GeminiConfig
	client *genai.Client
}

func NewGemini(ctx context.Context, log *logger.Logger, cfg GeminiConfig) (*GeminiClient, error) {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing Gemini API key")
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "text-embedding-004"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{
		log:    log.With("client", "GeminiClient"),
		cfg:    cfg,
		client: client,
	}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func (g *GeminiClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := g.client.EmbeddingModel(g.cfg.EmbedModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch = batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini response missing embedding for input %d", i)
		}
		out[i] = normalizeEmbedding(emb.Values)
	}
	return out, nil
}

func (g *GeminiClient) Complete(ctx context.Context, system, user string, opts CompletionOptions) (*Completion, error) {
	model := g.client.GenerativeModel(g.cfg.ChatModel)
	model.SetTemperature(opts.Temperature)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return nil, fmt.Errorf("gemini generation: %w", err)
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return nil, fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
		g.log.Warn("completion finished early", "finish_reason", candidate.FinishReason.String())
	}

	var sb strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	completion := &Completion{Text: sb.String()}
	if resp.UsageMetadata != nil {
		completion.Usage = TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return completion, nil
}

// normalizeEmbedding scales a vector to unit length so cosine similarity in
// the index behaves consistently across providers.
func normalizeEmbedding(embedding []float32) []float32 {
	var sumSquares float64
	for _, v := range embedding {
		sumSquares += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return embedding
	}
	normalized := make([]float32, len(embedding))
	for i, v := range embedding {
		normalized[i] = float32(float64(v) / norm)
	}
	return normalized
}
