package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nyayamitra-backend/logger"
)

const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second

	embedTimeout = 30 * time.Second
	chatTimeout  = 120 * time.Second
)

type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	EmbedModel string
	ChatModel  string
}

// OpenAIClient talks to any OpenAI-compatible API. It implements both
// Embedder and Completer.
type OpenAIClient struct {
	log       *logger.Logger
	cfg       OpenAIConfig
	embedHTTP *http.Client
	chatHTTP  *http.Client
}

func NewOpenAI(log *logger.Logger, cfg OpenAIConfig) (*OpenAIClient, error) {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OpenAI API key")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "text-embedding-3-small"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	return &OpenAIClient{
		log:       log.With("client", "OpenAIClient"),
		cfg:       cfg,
		embedHTTP: &http.Client{Timeout: embedTimeout},
		chatHTTP:  &http.Client{Timeout: chatTimeout},
	}, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// EmbedTexts embeds all inputs in one call. The API may return items out of
// order, so each is placed by its index field; a response that does not cover
// every input fails the whole call.
func (c *OpenAIClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embeddingResponse
	err := c.post(ctx, c.embedHTTP, "/embeddings", embeddingRequest{
		Model: c.cfg.EmbedModel,
		Input: texts,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("openai embedding index %d out of range", item.Index)
		}
		out[item.Index] = item.Embedding
	}
	for i, emb := range out {
		if len(emb) == 0 {
			return nil, fmt.Errorf("openai response missing embedding for input %d", i)
		}
	}
	return out, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage TokenUsage `json:"usage"`
}

func (c *OpenAIClient) Complete(ctx context.Context, system, user string, opts CompletionOptions) (*Completion, error) {
	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	var resp chatResponse
	err := c.post(ctx, c.chatHTTP, "/chat/completions", chatRequest{
		Model:       c.cfg.ChatModel,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat returned no choices")
	}
	choice := resp.Choices[0]
	if choice.FinishReason != "" && choice.FinishReason != "stop" {
		c.log.Warn("completion finished early", "finish_reason", choice.FinishReason)
	}
	return &Completion{
		Text:  choice.Message.Content,
		Usage: resp.Usage,
	}, nil
}

// post sends one JSON request with retries. Rate limits and server errors are
// retried with doubling backoff (honoring Retry-After); auth and validation
// errors are returned immediately.
func (c *OpenAIClient) post(ctx context.Context, httpClient *http.Client, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + path

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			c.log.Warn("retrying request", "path", path, "attempt", attempt+1, "backoff", backoff)
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}

		reqErr := fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return reqErr
		}
		lastErr = reqErr
		if resp.StatusCode == http.StatusTooManyRequests {
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
				backoff = time.Duration(secs) * time.Second
			}
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
