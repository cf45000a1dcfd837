package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(reviewsTotal.WithLabelValues(OutcomeNonJSON))
	IncReview(OutcomeNonJSON)
	assert.Equal(t, before+1, testutil.ToFloat64(reviewsTotal.WithLabelValues(OutcomeNonJSON)))

	before = testutil.ToFloat64(uploadsTotal.WithLabelValues(OutcomeOK, "ocr"))
	IncUpload(OutcomeOK, "ocr")
	assert.Equal(t, before+1, testutil.ToFloat64(uploadsTotal.WithLabelValues(OutcomeOK, "ocr")))

	before = testutil.ToFloat64(ocrTotal.WithLabelValues(OutcomeError))
	IncOCR(OutcomeError)
	assert.Equal(t, before+1, testutil.ToFloat64(ocrTotal.WithLabelValues(OutcomeError)))

	assert.NotPanics(t, func() { ObserveLLMDuration("gemini", -time.Second) })
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", Handler())

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/ping", "204"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/ping", "204")))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "resume_reviews_total")
}
