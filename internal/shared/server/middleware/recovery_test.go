package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryReturnsJSON500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"error":"Unexpected server error"}`, resp.Body.String())
}

func TestRequestIDReuseRules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFromContext(c)) })

	cases := []struct {
		name   string
		header string
		reuse  bool
	}{
		{name: "generated", header: "", reuse: false},
		{name: "reused", header: "abc-123", reuse: true},
		{name: "too long", header: strings.Repeat("a", maxRequestIDLen+1), reuse: false},
		{name: "unprintable", header: "abc def", reuse: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/id", nil)
			if tc.header != "" {
				req.Header.Set(requestIDHeader, tc.header)
			}
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			id := resp.Header().Get(requestIDHeader)
			require.NotEmpty(t, id)
			assert.Equal(t, id, resp.Body.String())
			if tc.reuse {
				assert.Equal(t, tc.header, id)
			} else {
				assert.NotEqual(t, tc.header, id)
			}
		})
	}

	assert.Empty(t, RequestIDFromContext(nil))
}
