package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"resume-review/internal/shared/telemetry"
)

// ErrMissingAPIKey is returned by New when OCR is enabled without a key.
var ErrMissingAPIKey = errors.New("ocr: api key is required")

// Config configures the OCR.space style HTTP API.
type Config struct {
	APIKey   string
	Endpoint string
	Language string
	Timeout  time.Duration
}

// Client calls a hosted OCR API that accepts a multipart file and returns
// per-page parsed text.
type Client struct {
	http     *resty.Client
	endpoint string
	language string
}

// DefaultTimeout bounds an OCR call when Config.Timeout is not positive.
const DefaultTimeout = 60 * time.Second

// New builds a Client. The timeout bounds the whole call; no retries are made.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("ocr: endpoint is required")
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = "eng"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("apikey", cfg.APIKey)

	return &Client{
		http:     httpClient,
		endpoint: cfg.Endpoint,
		language: language,
	}, nil
}

// Recognize uploads the document and returns the parsed text of every page
// joined by newlines.
func (c *Client) Recognize(ctx context.Context, data []byte, fileName, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if fileName == "" {
		fileName = "upload"
	}

	start := time.Now()
	req := c.http.R().
		SetContext(ctx).
		SetFileReader("file", fileName, bytes.NewReader(data)).
		SetFormData(map[string]string{
			"language":          c.language,
			"isOverlayRequired": "false",
			"OCREngine":         "2",
			"scale":             "true",
		})
	if ft := fileType(fileName, mimeType); ft != "" {
		req.SetFormData(map[string]string{"filetype": ft})
	}

	resp, err := req.Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ocr request: status %d: %s", resp.StatusCode(), telemetry.Truncate(resp.String(), 200))
	}

	body := resp.String()
	if !gjson.Valid(body) {
		return "", fmt.Errorf("ocr response: invalid json: %s", telemetry.Truncate(body, 200))
	}
	parsed := gjson.Parse(body)
	if parsed.Get("IsErroredOnProcessing").Bool() {
		return "", fmt.Errorf("ocr processing: %s", errorMessage(parsed.Get("ErrorMessage")))
	}

	var pages []string
	for _, page := range parsed.Get("ParsedResults.#.ParsedText").Array() {
		if text := strings.TrimSpace(page.String()); text != "" {
			pages = append(pages, text)
		}
	}

	telemetry.Debug("ocr.complete", map[string]any{
		"name":        fileName,
		"pages":       len(pages),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return strings.Join(pages, "\n"), nil
}

func errorMessage(v gjson.Result) string {
	if !v.Exists() {
		return "unknown error"
	}
	if v.IsArray() {
		var parts []string
		for _, item := range v.Array() {
			parts = append(parts, item.String())
		}
		return strings.Join(parts, "; ")
	}
	return v.String()
}

func fileType(fileName, mimeType string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), ".")) {
	case "pdf":
		return "PDF"
	case "png":
		return "PNG"
	case "jpg", "jpeg":
		return "JPG"
	}
	if strings.Contains(strings.ToLower(mimeType), "pdf") {
		return "PDF"
	}
	return ""
}
