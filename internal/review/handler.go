package review

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-review/internal/shared/server/respond"
)

const defaultMaxBodyBytes = 2 << 20

// Handler wires POST /review to the review service.
type Handler struct {
	Svc          *Service
	MaxBodyBytes int64
}

// NewHandler constructs a Handler. A non-positive maxBody uses the 2 MiB default.
func NewHandler(svc *Service, maxBody int64) *Handler {
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Handler{Svc: svc, MaxBodyBytes: maxBody}
}

// RegisterRoutes attaches the review route; mw runs before the handler.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), h.review)
	rg.POST("/review", handlers...)
}

func (h *Handler) review(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBodyBytes)

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "Payload too large", err, gin.H{"limitBytes": h.MaxBodyBytes})
			return
		}
		respond.Error(c, http.StatusBadRequest, "Invalid request body", err, nil)
		return
	}

	result, err := h.Svc.Review(c.Request.Context(), req)
	if err != nil {
		var verr *ValidationError
		var nonJSON *NonJSONError
		switch {
		case errors.As(err, &verr):
			respond.Error(c, http.StatusBadRequest, "Invalid request", err, gin.H{"fields": verr.Fields})
		case errors.Is(err, ErrInvalidRequest):
			respond.Error(c, http.StatusBadRequest, "Invalid request", err, nil)
		case errors.As(err, &nonJSON):
			respond.Error(c, http.StatusBadGateway, "LLM returned non-JSON response", err, gin.H{"raw": nonJSON.Raw})
		default:
			respond.Error(c, http.StatusInternalServerError, "Failed to review resume", err, nil)
		}
		return
	}

	respond.OK(c, result)
}
