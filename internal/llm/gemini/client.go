package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"resume-review/internal/llm"
	"resume-review/internal/shared/metrics"
	"resume-review/internal/shared/telemetry"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

const providerName = "gemini"

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Client on the Gemini API.
type Client struct {
	models contentGenerator
	model  string
}

// NewClient creates a Gemini client for the given key and model.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is required: %w", llm.ErrNotConfigured)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	return &Client{models: client.Models, model: model}, nil
}

// Generate sends the prompt as a single user turn and returns the joined text parts.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.models == nil {
		return "", errors.New("gemini client is not initialized")
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	metrics.ObserveLLMDuration(providerName, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	var builder strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part == nil || part.Text == "" {
					continue
				}
				builder.WriteString(part.Text)
			}
		}
	}

	output := builder.String()
	telemetry.Debug("llm.response", map[string]any{
		"provider":     providerName,
		"model":        c.model,
		"prompt_chars": len(prompt),
		"output_chars": len(output),
		"duration_ms":  time.Since(start).Milliseconds(),
	})
	if strings.TrimSpace(output) == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

var _ llm.Client = (*Client)(nil)
