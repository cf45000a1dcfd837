package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the counters below.
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeUnsupported = "unsupported"
	OutcomeTooLarge    = "too_large"
	OutcomeNoText      = "no_text"
	OutcomeEmpty       = "empty"
	OutcomeNonJSON     = "non_json"
	OutcomeError       = "error"
)

var (
	httpDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.005,
				0.99: 0.001,
			},
		},
		[]string{"method", "path", "status_code"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_uploads_total",
			Help: "Uploaded documents by extraction outcome",
		},
		[]string{"outcome", "source"},
	)

	ocrTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_ocr_requests_total",
			Help: "OCR fallback calls by outcome",
		},
		[]string{"outcome"},
	)

	reviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_reviews_total",
			Help: "Review requests by outcome",
		},
		[]string{"outcome"},
	)

	llmDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_llm_duration_seconds",
			Help:    "LLM generate call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)
)

// IncUpload counts an upload by outcome and text source ("text-layer", "ocr" or "").
func IncUpload(outcome, source string) {
	uploadsTotal.WithLabelValues(outcome, source).Inc()
}

// IncOCR counts an OCR fallback call.
func IncOCR(outcome string) {
	ocrTotal.WithLabelValues(outcome).Inc()
}

// IncReview counts a review request.
func IncReview(outcome string) {
	reviewsTotal.WithLabelValues(outcome).Inc()
}

// ObserveLLMDuration records the wall time of one LLM call.
func ObserveLLMDuration(provider string, d time.Duration) {
	if d < 0 {
		d = 0
	}
	llmDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// Middleware records request count and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		httpDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		httpRequests.WithLabelValues(method, path, status).Inc()
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
