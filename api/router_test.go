package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/sift/api/handler"
	"github.com/use-agent/sift/cache"
	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/detector"
	"github.com/use-agent/sift/engine"
	"github.com/use-agent/sift/extractor"
	"github.com/use-agent/sift/memory"
	"github.com/use-agent/sift/scraper"
	"github.com/use-agent/sift/templates"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Load()
	cfg.Server.Mode = "test"
	cfg.Auth.Enabled = true
	cfg.Auth.APIKeys = []string{"test-key"}

	eng, err := engine.NewHTTPEngine(engine.DefaultOptions())
	require.NoError(t, err)
	sc := scraper.New(eng, detector.New(cfg.Detection.Weights(), nil, memory.NewLocal()), extractor.New(nil))
	cc := cache.New(10, time.Minute)
	t.Cleanup(cc.Stop)
	batches := handler.NewBatches(sc, cfg.Batch.MaxURLs, cfg.Batch.Concurrency)
	t.Cleanup(batches.Stop)

	return NewRouter(cfg, Deps{
		Scraper:   sc,
		Cache:     cc,
		Templates: templates.NewStore(),
		Batches:   batches,
		Health:    handler.Health("memory", nil, time.Now()),
	})
}

func TestRouter_PublicAndProtected(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		key    string
		want   int
	}{
		{"health is public", http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{"metrics is public", http.MethodGet, "/metrics", "", http.StatusOK},
		{"templates need a key", http.MethodGet, "/api/v1/templates", "", http.StatusUnauthorized},
		{"templates with key", http.MethodGet, "/api/v1/templates", "test-key", http.StatusOK},
		{"analyze needs a key", http.MethodPost, "/api/v1/analyze", "", http.StatusUnauthorized},
		{"unknown batch", http.MethodGet, "/api/v1/batch/nope", "test-key", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRouter_MetricsExposeRequestCounter(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sift_http_requests_total")
}
