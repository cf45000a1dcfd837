package respond

import (
	"github.com/gin-gonic/gin"

	"resume-review/internal/shared/telemetry"
)

// Error sends a flat error payload {"error": message, ...extra} and logs the failure
// with its underlying cause. Only message and extra reach the client.
func Error(c *gin.Context, status int, message string, cause error, extra gin.H) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if cause != nil {
		fields["err"] = cause.Error()
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	body := gin.H{"error": message}
	for k, v := range extra {
		if k == "error" {
			continue
		}
		body[k] = v
	}
	c.AbortWithStatusJSON(status, body)
}
