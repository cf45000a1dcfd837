package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultMaxUploadBytes = 8 << 20
	defaultMaxJSONBytes   = 2 << 20
	defaultOCRTimeout     = 60 * time.Second
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	ClientDistDir   string
	MaxUploadBytes  int64
	MaxJSONBytes    int64
	LLMProvider     string
	LLMModel        string
	GoogleAPIKey    string
	OpenAIAPIKey    string
	OCR             OCRConfig
	ReviewRateLimit RateLimitConfig
	LogLevel        string
	LogFormat       string
}

// OCRConfig configures the optional OCR fallback used for image-only documents.
type OCRConfig struct {
	Enabled  bool
	APIKey   string
	Endpoint string
	Language string
	Timeout  time.Duration
}

// RateLimitConfig is a per-client token bucket. A zero PerMinute disables limiting.
type RateLimitConfig struct {
	PerMinute float64
	Burst     int
}

// Load reads configuration from the process environment and the global viper instance.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")
	return FromViper(viper.GetViper())
}

// FromViper builds a Config from v, applying defaults and environment bindings.
func FromViper(v *viper.Viper) Config {
	setDefaults(v)
	v.AutomaticEnv()

	env := v.GetString("ENV")
	if strings.TrimSpace(env) == "" {
		env = v.GetString("NODE_ENV")
	}

	provider := normalizeProvider(v.GetString("LLM_PROVIDER"))

	return Config{
		Port:            v.GetString("PORT"),
		Env:             normalizeEnv(env),
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		ClientDistDir:   v.GetString("CLIENT_DIST_DIR"),
		MaxUploadBytes:  positiveInt64(v.GetInt64("MAX_UPLOAD_BYTES"), defaultMaxUploadBytes),
		MaxJSONBytes:    positiveInt64(v.GetInt64("MAX_JSON_BYTES"), defaultMaxJSONBytes),
		LLMProvider:     provider,
		LLMModel:        strings.TrimSpace(v.GetString("LLM_MODEL")),
		GoogleAPIKey:    strings.TrimSpace(v.GetString("GOOGLE_API_KEY")),
		OpenAIAPIKey:    strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OCR: OCRConfig{
			Enabled:  v.GetBool("OCR_ENABLED"),
			APIKey:   strings.TrimSpace(v.GetString("OCR_API_KEY")),
			Endpoint: v.GetString("OCR_ENDPOINT"),
			Language: v.GetString("OCR_LANGUAGE"),
			Timeout:  parseTimeout(v.GetString("OCR_TIMEOUT"), defaultOCRTimeout),
		},
		ReviewRateLimit: RateLimitConfig{
			PerMinute: v.GetFloat64("RATE_LIMIT_REVIEW_RPM"),
			Burst:     v.GetInt("RATE_LIMIT_REVIEW_BURST"),
		},
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}
}

// IsProduction reports whether built client assets should be served.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("CLIENT_DIST_DIR", "client/dist")
	v.SetDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	v.SetDefault("MAX_JSON_BYTES", defaultMaxJSONBytes)
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("OCR_ENABLED", false)
	v.SetDefault("OCR_ENDPOINT", "https://api.ocr.space/parse/image")
	v.SetDefault("OCR_LANGUAGE", "eng")
	v.SetDefault("OCR_TIMEOUT", "60s")
	v.SetDefault("RATE_LIMIT_REVIEW_RPM", 0)
	v.SetDefault("RATE_LIMIT_REVIEW_BURST", 5)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func positiveInt64(v, def int64) int64 {
	if v <= 0 {
		return def
	}
	return v
}

// parseTimeout accepts bare seconds ("45") or a Go duration ("1m30s").
func parseTimeout(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs > 0 {
			return time.Duration(secs) * time.Second
		}
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return def
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	default:
		return "gemini"
	}
}
