package models

// AnalyzeRequest is the payload for POST /api/v1/analyze.
type AnalyzeRequest struct {
	// URL is the target page to analyze. Required.
	URL string `json:"url" binding:"required,url"`

	// UseSemanticAnalysis runs the semantic text patterns over the page body.
	// Default: true.
	UseSemanticAnalysis *bool `json:"use_semantic_analysis,omitempty"`

	// UsePatternMemory replays fields remembered for the page's domain.
	// Default: true.
	UsePatternMemory *bool `json:"use_pattern_memory,omitempty"`

	// ConfidenceThreshold drops candidates below threshold*100.
	// Default: 0.6. Range: 0-1.
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty" binding:"omitempty,min=0,max=1"`

	// MaxAge allows serving a cached analysis younger than MaxAge milliseconds.
	// Default: 0 (no caching).
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *AnalyzeRequest) Defaults(threshold float64) {
	if r.UseSemanticAnalysis == nil {
		t := true
		r.UseSemanticAnalysis = &t
	}
	if r.UsePatternMemory == nil {
		t := true
		r.UsePatternMemory = &t
	}
	if r.ConfidenceThreshold == nil {
		r.ConfidenceThreshold = &threshold
	}
}

// Options converts the request flags into engine options.
func (r *AnalyzeRequest) Options() AnalyzeOptions {
	return AnalyzeOptions{
		UseSemanticAnalysis: r.UseSemanticAnalysis == nil || *r.UseSemanticAnalysis,
		UsePatternMemory:    r.UsePatternMemory == nil || *r.UsePatternMemory,
		ConfidenceThreshold: derefOr(r.ConfidenceThreshold, 0),
	}
}

// AnalyzeOptions tunes a single detection run.
type AnalyzeOptions struct {
	UseSemanticAnalysis bool    `json:"use_semantic_analysis"`
	UsePatternMemory    bool    `json:"use_pattern_memory"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// ExtractRequest is the payload for POST /api/v1/extract.
type ExtractRequest struct {
	// URL is the target page. Required.
	URL string `json:"url" binding:"required,url"`

	// Fields are the extraction rules to apply. Required.
	Fields []DetectedField `json:"fields" binding:"required,min=1,dive"`
}

// ExportRequest is the payload for POST /api/v1/export.
type ExportRequest struct {
	// Format is one of csv, json, xml, markdown. Default: json.
	Format string `json:"format,omitempty" binding:"omitempty,oneof=csv json xml markdown"`

	// Records are the rows to encode.
	Records []Record `json:"records"`
}

func derefOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
