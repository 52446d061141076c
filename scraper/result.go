package scraper

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/sift/extractor"
	"github.com/use-agent/sift/models"
)

// Page is a fetched and parsed document.
type Page struct {
	URL      string
	FinalURL string
	HTML     string
	Title    string
	Doc      *goquery.Document
	FetchDur time.Duration
}

// AnalyzeResult is the output of Analyze.
type AnalyzeResult struct {
	PageInfo models.PageInfo
	Fields   []models.DetectedField
	Timing   models.TimingInfo
}

// ExtractResult is the output of Extract.
type ExtractResult struct {
	Records []models.Record
	Regime  extractor.Regime
	Timing  models.TimingInfo
}
