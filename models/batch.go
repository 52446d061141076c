package models

// BatchExtractRequest is the payload for POST /api/v1/batch/extract.
type BatchExtractRequest struct {
	// URLs is the list of pages to extract from. Required.
	URLs []string `json:"urls" binding:"required,min=1,max=100,dive,url"`

	// Fields are applied to every URL. Required.
	Fields []DetectedField `json:"fields" binding:"required,min=1,dive"`

	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// BatchResponse is the immediate response for POST /api/v1/batch/extract.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchStatusResponse is the response for GET /api/v1/batch/:id.
type BatchStatusResponse struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	Completed int                `json:"completed"`
	Total     int                `json:"total"`
	Results   []*ExtractResponse `json:"results,omitempty"`
}

// BatchJob tracks an in-progress batch extraction.
type BatchJob struct {
	ID            string
	Status        string // "processing", "completed", "failed", "partial"
	Total         int
	Completed     int
	Results       []*ExtractResponse
	CreatedAt     int64 // unix timestamp
	WebhookURL    string
	WebhookSecret string
}
