package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sift/models"
)

// respondError maps err to an HTTP status and writes the error body. No
// partial result is ever attached.
func respondError(c *gin.Context, err error) {
	se := models.AsScrapeError(err)
	c.JSON(StatusFor(se.Code), models.ErrorResponse{
		Success: false,
		Error:   se.ToDetail(),
	})
}

// badRequest reports a request body that failed binding.
func badRequest(c *gin.Context, err error) {
	respondError(c, models.NewInvalidInputError("invalid request: "+err.Error()))
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeFetch:
		return http.StatusBadGateway // 502
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeParse:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
