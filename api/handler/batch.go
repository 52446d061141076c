package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/use-agent/sift/metrics"
	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/scraper"
	"github.com/use-agent/sift/webhook"
)

// batchTTL is how long finished jobs stay queryable.
const batchTTL = time.Hour

// batchJob guards a models.BatchJob shared between the worker goroutines
// and status requests.
type batchJob struct {
	mu  sync.Mutex
	job models.BatchJob
}

func (b *batchJob) snapshot() models.BatchStatusResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	results := make([]*models.ExtractResponse, len(b.job.Results))
	copy(results, b.job.Results)
	return models.BatchStatusResponse{
		ID:        b.job.ID,
		Status:    b.job.Status,
		Completed: b.job.Completed,
		Total:     b.job.Total,
		Results:   results,
	}
}

// Batches runs batch extraction jobs and answers status queries.
type Batches struct {
	sc          *scraper.Scraper
	maxURLs     int
	concurrency int
	jobs        sync.Map // id (string) -> *batchJob
	done        chan struct{}
	stopOnce    sync.Once
}

// NewBatches creates a batch runner. It starts a goroutine that forgets
// jobs older than an hour until Stop is called.
func NewBatches(sc *scraper.Scraper, maxURLs, concurrency int) *Batches {
	if concurrency <= 0 {
		concurrency = 5
	}
	b := &Batches{sc: sc, maxURLs: maxURLs, concurrency: concurrency, done: make(chan struct{})}
	go b.cleanupLoop()
	return b
}

// Stop terminates the cleanup goroutine.
func (b *Batches) Stop() {
	b.stopOnce.Do(func() { close(b.done) })
}

func (b *Batches) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-batchTTL).Unix()
			b.jobs.Range(func(key, value any) bool {
				j := value.(*batchJob)
				j.mu.Lock()
				expired := j.job.CreatedAt < cutoff && j.job.Status != "processing"
				j.mu.Unlock()
				if expired {
					b.jobs.Delete(key)
				}
				return true
			})
		}
	}
}

// Post returns a handler for POST /api/v1/batch/extract.
func (b *Batches) Post() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if b.maxURLs > 0 && len(req.URLs) > b.maxURLs {
			respondError(c, models.NewInvalidInputError(fmt.Sprintf("maximum %d URLs per batch", b.maxURLs)))
			return
		}

		j := &batchJob{job: models.BatchJob{
			ID:            "batch-" + uuid.NewString(),
			Status:        "processing",
			Total:         len(req.URLs),
			Results:       make([]*models.ExtractResponse, len(req.URLs)),
			CreatedAt:     time.Now().Unix(),
			WebhookURL:    req.WebhookURL,
			WebhookSecret: req.WebhookSecret,
		}}
		b.jobs.Store(j.job.ID, j)

		go b.run(j, req)

		c.JSON(http.StatusAccepted, models.BatchResponse{
			ID:     j.job.ID,
			Status: "processing",
			Total:  len(req.URLs),
		})
	}
}

// Get returns a handler for GET /api/v1/batch/:id.
func (b *Batches) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := b.jobs.Load(c.Param("id"))
		if !ok {
			respondError(c, models.NewScrapeError(models.ErrCodeNotFound, "batch job not found", nil))
			return
		}
		c.JSON(http.StatusOK, val.(*batchJob).snapshot())
	}
}

// run extracts every URL with bounded concurrency, then fires the
// completion webhook.
func (b *Batches) run(j *batchJob, req models.BatchExtractRequest) {
	metrics.BatchJobsInFlight.Inc()
	defer metrics.BatchJobsInFlight.Dec()

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup
	failed := 0

	for i, rawURL := range req.URLs {
		wg.Add(1)
		go func(idx int, targetURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resp := b.extractOne(targetURL, req.Fields)

			j.mu.Lock()
			j.job.Results[idx] = resp
			j.job.Completed++
			if !resp.Success {
				failed++
			}
			j.mu.Unlock()
		}(i, rawURL)
	}
	wg.Wait()

	j.mu.Lock()
	switch {
	case failed == j.job.Total:
		j.job.Status = "failed"
	case failed > 0:
		j.job.Status = "partial"
	default:
		j.job.Status = "completed"
	}
	id, status, total := j.job.ID, j.job.Status, j.job.Total
	hookURL, hookSecret := j.job.WebhookURL, j.job.WebhookSecret
	j.mu.Unlock()

	slog.Info("batch job finished",
		"id", id,
		"status", status,
		"failed", failed,
		"total", total,
	)

	if hookURL != "" {
		webhook.DeliverAsync(hookURL, hookSecret, &webhook.Event{
			Type:      webhook.EventBatchCompleted,
			JobID:     id,
			Timestamp: time.Now().Unix(),
			Data:      j.snapshot(),
		})
	}
}

func (b *Batches) extractOne(targetURL string, fields []models.DetectedField) *models.ExtractResponse {
	start := time.Now()
	res, err := b.sc.Extract(context.Background(), targetURL, fields)
	if err != nil {
		return &models.ExtractResponse{
			Success: false,
			Records: []models.Record{},
			Error:   models.AsScrapeError(err).ToDetail(),
			Timing:  models.TimingInfo{TotalMs: time.Since(start).Milliseconds()},
		}
	}
	return &models.ExtractResponse{
		Success: true,
		Records: res.Records,
		Regime:  string(res.Regime),
		Total:   len(res.Records),
		Timing:  res.Timing,
	}
}
