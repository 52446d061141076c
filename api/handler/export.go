package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sift/export"
	"github.com/use-agent/sift/models"
)

// Export returns a handler for POST /api/v1/export. The body is the encoded
// file, served as an attachment.
func Export() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		writeExport(c, req.Format, req.Records, "records")
	}
}

func writeExport(c *gin.Context, format string, records []models.Record, basename string) {
	out, err := export.Encode(format, records)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, basename, out.Extension))
	c.Data(http.StatusOK, out.ContentType, out.Body)
}
