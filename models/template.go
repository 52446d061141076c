package models

import "time"

// Template is a saved extraction setup for a site.
type Template struct {
	ID           string          `json:"id"`
	Name         string          `json:"name" binding:"required"`
	URL          string          `json:"url" binding:"required,url"`
	Domain       string          `json:"domain"`
	Fields       []DetectedField `json:"fields" binding:"required,min=1,dive"`
	ExportFormat string          `json:"export_format,omitempty" binding:"omitempty,oneof=csv json xml markdown"`
	Options      AnalyzeOptions  `json:"options"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TemplateListResponse is the response for GET /api/v1/templates.
type TemplateListResponse struct {
	Templates []Template `json:"templates"`
	Total     int        `json:"total"`
}
