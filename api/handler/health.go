package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sift/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// MemoryStats reports the number of domains held by pattern memory.
type MemoryStats func(ctx context.Context) (int, error)

// Health returns a handler for GET /api/v1/health. A failing pattern memory
// backend degrades the status but never fails the probe.
func Health(backend string, stats MemoryStats, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		remembered := 0
		if stats != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			n, err := stats(ctx)
			cancel()
			if err != nil {
				slog.Warn("health: pattern memory unavailable", "backend", backend, "error", err)
				status = "degraded"
			}
			remembered = n
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:          status,
			Uptime:          time.Since(startTime).Round(time.Second).String(),
			Version:         Version,
			MemoryBackend:   backend,
			RememberedSites: remembered,
		})
	}
}
