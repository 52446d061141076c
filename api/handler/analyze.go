package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sift/cache"
	"github.com/use-agent/sift/metrics"
	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/scraper"
)

// Analyze returns a handler for POST /api/v1/analyze.
//
// With max_age > 0 a cached analysis younger than max_age milliseconds is
// returned instead of fetching again. Fresh results are always cached.
func Analyze(sc *scraper.Scraper, cc *cache.Cache, defaultThreshold float64) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		req.Defaults(defaultThreshold)
		opts := req.Options()

		key := cache.Key(req.URL, opts)
		if cc != nil && req.MaxAge > 0 {
			if cached, ok := cc.Get(key, req.MaxAge); ok {
				metrics.AnalysisCacheTotal.WithLabelValues("hit").Inc()
				hit := *cached
				hit.CacheStatus = "hit"
				c.JSON(http.StatusOK, hit)
				return
			}
			metrics.AnalysisCacheTotal.WithLabelValues("miss").Inc()
		}

		res, err := sc.Analyze(c.Request.Context(), req.URL, opts)
		if err != nil {
			respondError(c, err)
			return
		}

		resp := &models.AnalyzeResponse{
			Success:        true,
			PageInfo:       &res.PageInfo,
			DetectedFields: res.Fields,
			Timing:         res.Timing,
		}
		if cc != nil {
			cc.Set(key, resp)
		}

		out := *resp
		if req.MaxAge > 0 {
			out.CacheStatus = "miss"
		}
		c.JSON(http.StatusOK, out)
	}
}
