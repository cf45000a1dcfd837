package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"resume-review/internal/review"
	"resume-review/internal/services/health"
	"resume-review/internal/shared/config"
	"resume-review/internal/shared/metrics"
	"resume-review/internal/shared/server/middleware"
	"resume-review/internal/uploads"
)

// RouterDeps groups handler dependencies for router wiring.
type RouterDeps struct {
	Config        config.Config
	Health        *health.Service
	UploadHandler *uploads.Handler
	ReviewHandler *review.Handler
	// Now drives the review rate limiter; nil uses time.Now.
	Now func() time.Time
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		metrics.Middleware(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	api := r.Group("/api")
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	healthSvc.RegisterRoutes(api)
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterRoutes(api)
	}
	if deps.ReviewHandler != nil {
		var reviewMW []gin.HandlerFunc
		rule := middleware.PerMinute(cfg.ReviewRateLimit.PerMinute, cfg.ReviewRateLimit.Burst)
		if rule.Enabled() {
			reviewMW = append(reviewMW, middleware.RateLimit(rule, middleware.NewRateLimiter(deps.Now)))
		}
		deps.ReviewHandler.RegisterRoutes(api, reviewMW...)
	}

	r.GET("/metrics", metrics.Handler())
	registerClient(r, cfg)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":5000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
