package models

// AnalyzeResponse is the response for POST /api/v1/analyze.
type AnalyzeResponse struct {
	// Success indicates whether the analysis completed without errors.
	Success bool `json:"success"`

	// PageInfo describes the analyzed document.
	PageInfo *PageInfo `json:"page_info,omitempty"`

	// DetectedFields are the ranked field proposals. Never null on success.
	DetectedFields []DetectedField `json:"detected_fields"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus is "hit", "miss", or empty when caching was not requested.
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// ExtractResponse is the response for POST /api/v1/extract.
type ExtractResponse struct {
	Success bool `json:"success"`

	// Records are the extracted rows. Never null on success.
	Records []Record `json:"records"`

	// Regime names the structural strategy that produced the records.
	Regime string `json:"regime,omitempty"`

	// Total is len(Records).
	Total int `json:"total"`

	Timing TimingInfo   `json:"timing"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// FetchMs is the time spent fetching and parsing the page.
	FetchMs int64 `json:"fetch_ms"`

	// ProcessMs is the time spent in detection or extraction.
	ProcessMs int64 `json:"process_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime"`
	Version         string `json:"version"`
	MemoryBackend   string `json:"memory_backend"`
	RememberedSites int    `json:"remembered_sites"`
}

// ErrorResponse is the body of every failed request that has no
// endpoint-specific response shape.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}
