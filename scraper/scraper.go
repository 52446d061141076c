// Package scraper ties the fetch boundary to detection and extraction:
// validate input, fetch, parse, then run one synchronous pass.
package scraper

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/sift/cleaner"
	"github.com/use-agent/sift/detector"
	"github.com/use-agent/sift/engine"
	"github.com/use-agent/sift/extractor"
	"github.com/use-agent/sift/metrics"
	"github.com/use-agent/sift/models"
)

// Scraper is safe for concurrent use.
type Scraper struct {
	engine    engine.Engine
	detector  *detector.Detector
	extractor *extractor.Extractor
	inFlight  atomic.Int32
	startTime time.Time
}

// New creates a Scraper.
func New(eng engine.Engine, det *detector.Detector, ext *extractor.Extractor) *Scraper {
	return &Scraper{
		engine:    eng,
		detector:  det,
		extractor: ext,
		startTime: time.Now(),
	}
}

// InFlight returns the number of requests currently being processed.
func (s *Scraper) InFlight() int { return int(s.inFlight.Load()) }

// Uptime returns the time since the scraper was created.
func (s *Scraper) Uptime() time.Duration { return time.Since(s.startTime) }

// Analyze fetches rawURL and proposes ranked fields. Either the full result
// or an error is returned, never both.
func (s *Scraper) Analyze(ctx context.Context, rawURL string, opts models.AnalyzeOptions) (*AnalyzeResult, error) {
	if err := cleaner.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	if opts.ConfidenceThreshold < 0 || opts.ConfidenceThreshold > 1 {
		return nil, models.NewInvalidInputError("confidence_threshold must be between 0 and 1")
	}

	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	page, err := s.Load(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	info := cleaner.PageInfo(page.Doc, page.HTML, rawURL, page.Title)
	fields := s.detector.Detect(ctx, page.Doc, info.Domain, opts)
	metrics.FieldsDetected.Observe(float64(len(fields)))

	slog.Info("analyze: complete",
		"url", rawURL,
		"domain", info.Domain,
		"fields", len(fields),
		"fetch_ms", page.FetchDur.Milliseconds(),
	)

	return &AnalyzeResult{
		PageInfo: info,
		Fields:   fields,
		Timing:   timing(page.FetchDur, time.Since(start)),
	}, nil
}

// Extract fetches rawURL and applies every given field.
func (s *Scraper) Extract(ctx context.Context, rawURL string, fields []models.DetectedField) (*ExtractResult, error) {
	if err := cleaner.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	if err := cleaner.ValidateFields(fields); err != nil {
		return nil, err
	}

	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	page, err := s.Load(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records, regime := s.extractor.Extract(page.Doc, fields)
	metrics.ObserveExtraction(string(regime), len(records))

	slog.Info("extract: complete",
		"url", rawURL,
		"regime", regime,
		"records", len(records),
		"fetch_ms", page.FetchDur.Milliseconds(),
	)

	return &ExtractResult{
		Records: records,
		Regime:  regime,
		Timing:  timing(page.FetchDur, time.Since(start)),
	}, nil
}

// Load fetches and parses a page.
func (s *Scraper) Load(ctx context.Context, rawURL string) (*Page, error) {
	start := time.Now()
	res, err := s.engine.Fetch(ctx, &engine.FetchRequest{URL: rawURL})
	dur := time.Since(start)
	if err != nil {
		metrics.ObserveFetch(dur, models.AsScrapeError(err).Code)
		slog.Warn("fetch failed", "url", rawURL, "engine", s.engine.Name(), "error", err)
		return nil, err
	}
	metrics.ObserveFetch(dur, "")

	doc, err := Parse(res.HTML)
	if err != nil {
		return nil, err
	}
	return &Page{
		URL:      rawURL,
		FinalURL: res.FinalURL,
		HTML:     res.HTML,
		Title:    res.Title,
		Doc:      doc,
		FetchDur: dur,
	}, nil
}

// Parse builds a document from HTML. An empty body is a valid empty document.
func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, models.NewParseError("document is not parseable HTML", err)
	}
	return doc, nil
}

func timing(fetch, process time.Duration) models.TimingInfo {
	return models.TimingInfo{
		TotalMs:   (fetch + process).Milliseconds(),
		FetchMs:   fetch.Milliseconds(),
		ProcessMs: process.Milliseconds(),
	}
}
