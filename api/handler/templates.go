package handler

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sift/cleaner"
	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/scraper"
	"github.com/use-agent/sift/templates"
)

// unsafeFilename matches characters dropped from attachment names.
var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// CreateTemplate returns a handler for POST /api/v1/templates.
func CreateTemplate(store *templates.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := bindTemplate(c)
		if !ok {
			return
		}
		c.JSON(http.StatusCreated, store.Create(t))
	}
}

// ListTemplates returns a handler for GET /api/v1/templates.
func ListTemplates(store *templates.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list := store.List()
		c.JSON(http.StatusOK, models.TemplateListResponse{Templates: list, Total: len(list)})
	}
}

// GetTemplate returns a handler for GET /api/v1/templates/:id.
func GetTemplate(store *templates.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := store.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// UpdateTemplate returns a handler for PUT /api/v1/templates/:id.
func UpdateTemplate(store *templates.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := bindTemplate(c)
		if !ok {
			return
		}
		updated, err := store.Update(c.Param("id"), t)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteTemplate returns a handler for DELETE /api/v1/templates/:id.
func DeleteTemplate(store *templates.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Delete(c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RunTemplate returns a handler for POST /api/v1/templates/:id/run. It
// extracts with the template's fields and answers in the template's export
// format, or with a plain extract response when none is set.
func RunTemplate(sc *scraper.Scraper, store *templates.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := store.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		resp, err := extractOne(c, sc, t.URL, t.Fields)
		if err != nil {
			respondError(c, err)
			return
		}

		if t.ExportFormat == "" {
			c.JSON(http.StatusOK, resp)
			return
		}
		name := unsafeFilename.ReplaceAllString(t.Name, "_")
		if name == "" || name == "_" {
			name = "records"
		}
		writeExport(c, t.ExportFormat, resp.Records, name)
	}
}

// bindTemplate decodes and validates a template body, writing the error
// response itself on failure.
func bindTemplate(c *gin.Context) (models.Template, bool) {
	var t models.Template
	if err := c.ShouldBindJSON(&t); err != nil {
		badRequest(c, err)
		return t, false
	}
	if err := cleaner.ValidateURL(t.URL); err != nil {
		respondError(c, err)
		return t, false
	}
	if err := cleaner.ValidateFields(t.Fields); err != nil {
		respondError(c, err)
		return t, false
	}
	if t.Domain == "" {
		t.Domain = cleaner.Domain(t.URL)
	}
	return t, true
}
