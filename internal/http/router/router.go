// Package router wires handlers and middleware into the vanish HTTP engine.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roguepikachu/vanish/internal/http/handler"
	"github.com/roguepikachu/vanish/internal/http/middleware"
	"github.com/roguepikachu/vanish/pkg"
)

// Options tunes the engine built by NewRouter.
type Options struct {
	// TestMode installs middleware.TestClock so X-Test-Now-Ms pins "now".
	TestMode bool
	// CORSOrigins is the origin allow-list. Empty allows every origin.
	CORSOrigins []string
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *handler.Handler, health *handler.HealthHandler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(corsMiddleware(opts.CORSOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{pkg.MetricsPath})))
	if opts.TestMode {
		r.Use(middleware.TestClock())
	}

	r.SetHTMLTemplate(handler.PasteTemplate)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, pkg.NewError("not_found", "route not found"))
	})

	r.GET(pkg.MetricsPath, gin.WrapH(promhttp.Handler()))

	r.GET(pkg.HealthCheckPath, handler.Health)
	if health != nil {
		r.GET(pkg.LivenessPath, health.Liveness)
		r.GET(pkg.ReadinessPath, health.Readiness)
	}

	r.POST(pkg.PastesPath, h.Create)
	r.GET(pkg.PastesPath+"/:id", h.Get)
	r.GET(pkg.ViewPathPrefix+":id", h.View)
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "X-Client-ID", middleware.HeaderTestNow},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
