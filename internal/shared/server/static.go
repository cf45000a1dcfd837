package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-review/internal/shared/config"
	"resume-review/internal/shared/server/respond"
	"resume-review/internal/shared/telemetry"
)

// registerClient serves the built client in production with a single-page-app
// fallback to index.html. Unknown /api routes always get a JSON 404.
func registerClient(r *gin.Engine, cfg config.Config) {
	if !cfg.IsProduction() || strings.TrimSpace(cfg.ClientDistDir) == "" {
		r.NoRoute(respond.NotFound)
		return
	}

	dist := cfg.ClientDistDir
	index := filepath.Join(dist, "index.html")
	if _, err := os.Stat(index); err != nil {
		telemetry.Warn("client.dist_missing", map[string]any{"dir": dist, "err": err})
	}

	r.NoRoute(func(c *gin.Context) {
		reqPath := c.Request.URL.Path
		if reqPath == "/api" || strings.HasPrefix(reqPath, "/api/") {
			respond.NotFound(c)
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			respond.NotFound(c)
			return
		}

		clean := path.Clean("/" + reqPath)
		if clean != "/" {
			candidate := filepath.Join(dist, filepath.FromSlash(clean))
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				c.File(candidate)
				return
			}
		}

		if _, err := os.Stat(index); err != nil {
			respond.NotFound(c)
			return
		}
		c.File(index)
	})
}
