package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/use-agent/sift/api/handler"
	"github.com/use-agent/sift/api/middleware"
	"github.com/use-agent/sift/cache"
	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/scraper"
	"github.com/use-agent/sift/templates"
)

// Deps bundles everything the routes need.
type Deps struct {
	Scraper   *scraper.Scraper
	Cache     *cache.Cache
	Templates *templates.Store
	Batches   *handler.Batches
	Health    gin.HandlerFunc
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → Metrics
//	API:     Auth (if enabled) → RateLimit
//
// Health and /metrics sit outside auth so probes and scrapers always work.
func NewRouter(cfg *config.Config, d Deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/health", d.Health)

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/analyze", handler.Analyze(d.Scraper, d.Cache, cfg.Detection.DefaultThreshold))
	protected.POST("/extract", handler.Extract(d.Scraper))
	protected.POST("/export", handler.Export())

	protected.POST("/templates", handler.CreateTemplate(d.Templates))
	protected.GET("/templates", handler.ListTemplates(d.Templates))
	protected.GET("/templates/:id", handler.GetTemplate(d.Templates))
	protected.PUT("/templates/:id", handler.UpdateTemplate(d.Templates))
	protected.DELETE("/templates/:id", handler.DeleteTemplate(d.Templates))
	protected.POST("/templates/:id/run", handler.RunTemplate(d.Scraper, d.Templates))

	protected.POST("/batch/extract", d.Batches.Post())
	protected.GET("/batch/:id", d.Batches.Get())

	return r
}
