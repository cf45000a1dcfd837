package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-review/internal/extract"
	"resume-review/internal/llm"
	"resume-review/internal/llm/gemini"
	"resume-review/internal/llm/openai"
	"resume-review/internal/ocr"
	"resume-review/internal/review"
	"resume-review/internal/services/health"
	"resume-review/internal/shared/config"
	"resume-review/internal/shared/server"
	"resume-review/internal/shared/telemetry"
	"resume-review/internal/uploads"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	LLM           llm.Client
	OCR           extract.OCR
	Extractor     *extract.Extractor
	ReviewService *review.Service
	UploadHandler *uploads.Handler
	ReviewHandler *review.Handler
	Health        *health.Service
}

type options struct {
	llm    llm.Client
	ocr    extract.OCR
	ocrSet bool
}

// Option overrides a dependency, mainly for tests and dev tools.
type Option func(*options)

// WithLLM replaces the configured LLM provider.
func WithLLM(c llm.Client) Option {
	return func(o *options) { o.llm = c }
}

// WithOCR replaces the configured OCR client. A nil value disables OCR.
func WithOCR(c extract.OCR) Option {
	return func(o *options) {
		o.ocr = c
		o.ocrSet = true
	}
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	llmClient := o.llm
	if llmClient == nil {
		llmClient = NewLLM(cfg)
	}

	ocrClient := o.ocr
	if !o.ocrSet {
		built, err := NewOCR(cfg.OCR)
		if err != nil {
			return nil, err
		}
		ocrClient = built
	}

	app := &App{
		Config:    cfg,
		LLM:       llmClient,
		OCR:       ocrClient,
		Extractor: &extract.Extractor{OCR: ocrClient},
		Health:    health.NewService(),
	}
	app.ReviewService = review.NewService(llmClient, cfg.LLMProvider)
	app.ReviewHandler = review.NewHandler(app.ReviewService, cfg.MaxJSONBytes)
	app.UploadHandler = uploads.NewHandler(app.Extractor, cfg.MaxUploadBytes)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		Health:        app.Health,
		UploadHandler: app.UploadHandler,
		ReviewHandler: app.ReviewHandler,
	})

	telemetry.Info("app.built", map[string]any{
		"env":          cfg.Env,
		"llm_provider": cfg.LLMProvider,
		"llm_model":    modelName(cfg),
		"ocr_enabled":  ocrClient != nil,
		"serve_client": cfg.IsProduction(),
	})
	return app, nil
}

// NewLLM returns a lazily-built client for the configured provider. A missing
// credential surfaces on the first review rather than at startup.
func NewLLM(cfg config.Config) llm.Client {
	model := modelName(cfg)
	switch cfg.LLMProvider {
	case "openai":
		return llm.NewLazy(func(context.Context) (llm.Client, error) {
			return openai.NewClient(cfg.OpenAIAPIKey, model)
		})
	default:
		return llm.NewLazy(func(ctx context.Context) (llm.Client, error) {
			return gemini.NewClient(ctx, cfg.GoogleAPIKey, model)
		})
	}
}

// NewOCR returns the OCR client, or nil when OCR is disabled.
func NewOCR(cfg config.OCRConfig) (extract.OCR, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client, err := ocr.New(ocr.Config{
		APIKey:   cfg.APIKey,
		Endpoint: cfg.Endpoint,
		Language: cfg.Language,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ocr enabled but not usable: %w", err)
	}
	return client, nil
}

func modelName(cfg config.Config) string {
	if m := strings.TrimSpace(cfg.LLMModel); m != "" {
		return m
	}
	if cfg.LLMProvider == "openai" {
		return openai.DefaultModel
	}
	return gemini.DefaultModel
}
