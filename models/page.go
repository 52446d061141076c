package models

// Page classification tags.
const (
	PageTypeAnalyzed   = "analyzed"
	PageTypeMLAnalyzed = "ml-analyzed"
)

// Fallbacks used when a page carries no usable metadata.
const (
	UntitledPage       = "Untitled Page"
	NoDescriptionFound = "No description available"
)

// PageInfo is metadata about the analyzed document.
type PageInfo struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	Type        string `json:"type"`
}
