package health

import (
	"github.com/gin-gonic/gin"

	"resume-review/internal/shared/server/respond"
)

// Status is the liveness payload.
type Status struct {
	OK bool `json:"ok"`
}

// Service encapsulates health-related checks.
type Service struct{}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{}
}

// Status reports liveness. It does not probe upstream providers.
func (s *Service) Status() Status {
	return Status{OK: true}
}

// RegisterRoutes attaches GET /health.
func (s *Service) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		respond.OK(c, s.Status())
	})
}
