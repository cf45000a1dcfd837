package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-review/internal/llm"
	"resume-review/internal/shared/metrics"
	"resume-review/internal/shared/telemetry"
)

const rawPreviewChars = 500

// Service runs a review: prompt, one LLM call, normalization.
type Service struct {
	LLM      llm.Client
	Provider string
}

// NewService constructs a Service.
func NewService(client llm.Client, provider string) *Service {
	return &Service{LLM: client, Provider: provider}
}

// Review validates the request and returns the normalized LLM review. The LLM
// is not called when validation fails.
func (s *Service) Review(ctx context.Context, req ReviewRequest) (ReviewResult, error) {
	if err := req.Validate(); err != nil {
		metrics.IncReview(metrics.OutcomeInvalid)
		return ReviewResult{}, err
	}
	if s.LLM == nil {
		metrics.IncReview(metrics.OutcomeError)
		return ReviewResult{}, llm.ErrNotConfigured
	}

	prompt := llm.BuildReviewPrompt(req.Resume, req.JobDescription)
	start := time.Now()
	raw, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		metrics.IncReview(metrics.OutcomeError)
		return ReviewResult{}, fmt.Errorf("review: llm generate (%s): %w", s.Provider, err)
	}

	result, err := ParseLLMResponse(raw)
	if err != nil {
		var nonJSON *NonJSONError
		if errors.As(err, &nonJSON) {
			metrics.IncReview(metrics.OutcomeNonJSON)
		} else {
			metrics.IncReview(metrics.OutcomeError)
		}
		telemetry.Warn("review.non_json", map[string]any{
			"provider":    s.Provider,
			"raw_chars":   len(raw),
			"raw_preview": telemetry.Truncate(raw, rawPreviewChars),
		})
		return ReviewResult{}, err
	}

	metrics.IncReview(metrics.OutcomeOK)
	telemetry.Info("review.complete", map[string]any{
		"provider":      s.Provider,
		"resume_chars":  len(req.Resume),
		"has_jd":        req.JobDescription != "",
		"score":         result.Keywords.Score,
		"missing":       len(result.Keywords.Missing),
		"bullet_points": len(result.BulletPoints),
		"llm_ms":        time.Since(start).Milliseconds(),
	})
	return result, nil
}
