package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/scraper"
)

// Extract returns a handler for POST /api/v1/extract.
func Extract(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		resp, err := extractOne(c, sc, req.URL, req.Fields)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func extractOne(c *gin.Context, sc *scraper.Scraper, url string, fields []models.DetectedField) (*models.ExtractResponse, error) {
	res, err := sc.Extract(c.Request.Context(), url, fields)
	if err != nil {
		return nil, err
	}
	return &models.ExtractResponse{
		Success: true,
		Records: res.Records,
		Regime:  string(res.Regime),
		Total:   len(res.Records),
		Timing:  res.Timing,
	}, nil
}
