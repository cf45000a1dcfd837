package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"resume-review/internal/llm"
	"resume-review/internal/shared/metrics"
	"resume-review/internal/shared/telemetry"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

const providerName = "openai"

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient constructs a new OpenAI client. Extra options (base URL, HTTP
// client) are applied after the key.
func NewClient(apiKey, model string, opts ...option.RequestOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required: %w", llm.ErrNotConfigured)
	}
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}

	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &Client{
		client: openai.NewClient(append(base, opts...)...),
		model:  model,
	}, nil
}

// Generate sends the prompt as a single user message and returns the first choice.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model: openai.F(openai.ChatModel(c.model)),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	metrics.ObserveLLMDuration(providerName, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai response missing choices")
	}

	content := resp.Choices[0].Message.Content
	telemetry.Debug("llm.response", map[string]any{
		"provider":          providerName,
		"model":             c.model,
		"prompt_chars":      len(prompt),
		"output_chars":      len(content),
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"duration_ms":       time.Since(start).Milliseconds(),
	})
	if strings.TrimSpace(content) == "" {
		return "", errors.New("openai response empty content")
	}
	return content, nil
}

var _ llm.Client = (*Client)(nil)
