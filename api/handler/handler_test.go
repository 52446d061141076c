package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/sift/cache"
	"github.com/use-agent/sift/detector"
	"github.com/use-agent/sift/engine"
	"github.com/use-agent/sift/extractor"
	"github.com/use-agent/sift/memory"
	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/scraper"
	"github.com/use-agent/sift/templates"
	"github.com/use-agent/sift/webhook"
)

const capitalsPage = `<html><head><title>Capitals</title></head><body>
<table>
<tr><th>Name</th><th>Capital</th></tr>
<tr><td>France</td><td>Paris</td></tr>
<tr><td>Spain</td><td>Madrid</td></tr>
<tr><td>Italy</td><td>Rome</td></tr>
</table></body></html>`

func init() {
	gin.SetMode(gin.TestMode)
}

// pages serves fixtures: /capitals is a table page, anything else is 404.
func pages(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/capitals" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, capitalsPage)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type testAPI struct {
	router  *gin.Engine
	store   *templates.Store
	batches *Batches
}

func newAPI(t *testing.T) *testAPI {
	t.Helper()
	eng, err := engine.NewHTTPEngine(engine.Options{Timeout: 5 * time.Second})
	require.NoError(t, err)
	local := memory.NewLocal()
	sc := scraper.New(eng, detector.New(detector.DefaultWeights(), nil, local), extractor.New(nil))

	cc := cache.New(100, time.Hour)
	t.Cleanup(cc.Stop)
	batches := NewBatches(sc, 3, 2)
	t.Cleanup(batches.Stop)
	store := templates.NewStore()

	r := gin.New()
	v1 := r.Group("/api/v1")
	stats := func(context.Context) (int, error) { return local.Len(), nil }
	v1.GET("/health", Health("memory", stats, time.Now()))
	v1.POST("/analyze", Analyze(sc, cc, 0.6))
	v1.POST("/extract", Extract(sc))
	v1.POST("/export", Export())
	v1.POST("/templates", CreateTemplate(store))
	v1.GET("/templates", ListTemplates(store))
	v1.GET("/templates/:id", GetTemplate(store))
	v1.PUT("/templates/:id", UpdateTemplate(store))
	v1.DELETE("/templates/:id", DeleteTemplate(store))
	v1.POST("/templates/:id/run", RunTemplate(sc, store))
	v1.POST("/batch/extract", batches.Post())
	v1.GET("/batch/:id", batches.Get())

	return &testAPI{router: r, store: store, batches: batches}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func tableFields() []map[string]any {
	return []map[string]any{
		{"name": "Name", "type": "title", "selectors": []string{"td:first-child"}},
		{"name": "Capital", "type": "capital", "selectors": []string{"td:last-child"}},
	}
}

func TestAnalyze_CacheMissThenHit(t *testing.T) {
	api := newAPI(t)
	srv := pages(t)
	body := map[string]any{"url": srv.URL + "/capitals", "max_age": 60000}

	w := api.do(http.MethodPost, "/api/v1/analyze", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[models.AnalyzeResponse](t, w)
	assert.True(t, first.Success)
	assert.Equal(t, "miss", first.CacheStatus)
	assert.Equal(t, "Capitals", first.PageInfo.Title)
	assert.NotNil(t, first.DetectedFields)

	w = api.do(http.MethodPost, "/api/v1/analyze", body)
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[models.AnalyzeResponse](t, w)
	assert.Equal(t, "hit", second.CacheStatus)
	assert.Equal(t, len(first.DetectedFields), len(second.DetectedFields))
}

func TestAnalyze_NoCacheStatusWithoutMaxAge(t *testing.T) {
	api := newAPI(t)
	srv := pages(t)

	w := api.do(http.MethodPost, "/api/v1/analyze", map[string]any{"url": srv.URL + "/capitals"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[models.AnalyzeResponse](t, w).CacheStatus)
}

func TestAnalyze_Errors(t *testing.T) {
	api := newAPI(t)
	srv := pages(t)

	tests := []struct {
		name string
		body any
		code int
		want string
	}{
		{"missing url", map[string]any{}, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"threshold out of range", map[string]any{"url": srv.URL + "/capitals", "confidence_threshold": 2}, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"upstream 404", map[string]any{"url": srv.URL + "/missing"}, http.StatusBadGateway, models.ErrCodeFetch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(http.MethodPost, "/api/v1/analyze", tt.body)
			assert.Equal(t, tt.code, w.Code)
			resp := decode[models.ErrorResponse](t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.want, resp.Error.Code)
		})
	}
}

func TestExtract_Table(t *testing.T) {
	api := newAPI(t)
	srv := pages(t)

	w := api.do(http.MethodPost, "/api/v1/extract", map[string]any{
		"url":    srv.URL + "/capitals",
		"fields": tableFields(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.ExtractResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, string(extractor.RegimeTable), resp.Regime)
	require.Equal(t, 3, resp.Total)
	require.Len(t, resp.Records, 3)

	assert.Equal(t, []string{"Name", "Capital"}, resp.Records[0].Keys())
	v, ok := resp.Records[0].Get("Capital")
	require.True(t, ok)
	assert.Equal(t, "Paris", v.Join(""))
}

func TestExtract_InvalidSelector(t *testing.T) {
	api := newAPI(t)
	w := api.do(http.MethodPost, "/api/v1/extract", map[string]any{
		"url":    "https://example.com",
		"fields": []map[string]any{{"name": "x", "selectors": []string{"div["}}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrCodeInvalidInput, decode[models.ErrorResponse](t, w).Error.Code)
}

func TestExport_Formats(t *testing.T) {
	api := newAPI(t)
	records := []map[string]any{
		{"Name": "France", "Cities": []string{"Paris", "Lyon"}},
	}

	tests := []struct {
		format      string
		contentType string
		filename    string
		contains    string
	}{
		{"csv", "text/csv; charset=utf-8", "records.csv", `"Paris; Lyon"`},
		{"json", "application/json; charset=utf-8", "records.json", `"Lyon"`},
		{"xml", "application/xml; charset=utf-8", "records.xml", `<item id="1">`},
		{"markdown", "text/markdown; charset=utf-8", "records.md", "France"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w := api.do(http.MethodPost, "/api/v1/export", map[string]any{"format": tt.format, "records": records})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="`+tt.filename+`"`, w.Header().Get("Content-Disposition"))
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}

	w := api.do(http.MethodPost, "/api/v1/export", map[string]any{"format": "yaml", "records": records})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplates_Lifecycle(t *testing.T) {
	api := newAPI(t)
	srv := pages(t)

	w := api.do(http.MethodPost, "/api/v1/templates", map[string]any{
		"name":          "EU capitals",
		"url":           srv.URL + "/capitals",
		"fields":        tableFields(),
		"export_format": "csv",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Template](t, w)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "127.0.0.1", created.Domain)
	assert.False(t, created.CreatedAt.IsZero())

	w = api.do(http.MethodGet, "/api/v1/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[models.TemplateListResponse](t, w).Total)

	w = api.do(http.MethodPost, "/api/v1/templates/"+created.ID+"/run", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="EU_capitals.csv"`)
	assert.Contains(t, w.Body.String(), `"France","Paris"`)

	w = api.do(http.MethodPut, "/api/v1/templates/"+created.ID, map[string]any{
		"name":   "EU capitals",
		"url":    srv.URL + "/capitals",
		"fields": tableFields(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode[models.Template](t, w).ExportFormat)

	w = api.do(http.MethodPost, "/api/v1/templates/"+created.ID+"/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[models.ExtractResponse](t, w).Total)

	w = api.do(http.MethodDelete, "/api/v1/templates/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/api/v1/templates/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrCodeNotFound, decode[models.ErrorResponse](t, w).Error.Code)
}

func TestTemplates_RejectsInvalid(t *testing.T) {
	api := newAPI(t)
	w := api.do(http.MethodPost, "/api/v1/templates", map[string]any{
		"name":   "bad",
		"url":    "https://example.com",
		"fields": []map[string]any{{"name": "x", "selectors": []string{"p[["}}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, api.store.List())
}

func TestBatch_PartialWithWebhook(t *testing.T) {
	api := newAPI(t)
	srv := pages(t)

	const secret = "s3cret"
	received := make(chan *http.Request, 1)
	bodies := make(chan []byte, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		received <- r
		bodies <- b
	}))
	t.Cleanup(hook.Close)

	w := api.do(http.MethodPost, "/api/v1/batch/extract", map[string]any{
		"urls":           []string{srv.URL + "/capitals", srv.URL + "/missing"},
		"fields":         tableFields(),
		"webhook_url":    hook.URL,
		"webhook_secret": secret,
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	accepted := decode[models.BatchResponse](t, w)
	assert.Equal(t, "processing", accepted.Status)
	assert.Equal(t, 2, accepted.Total)

	var status models.BatchStatusResponse
	require.Eventually(t, func() bool {
		w := api.do(http.MethodGet, "/api/v1/batch/"+accepted.ID, nil)
		var s models.BatchStatusResponse
		if json.Unmarshal(w.Body.Bytes(), &s) != nil {
			return false
		}
		status = s
		return s.Status != "processing"
	}, 10*time.Second, 20*time.Millisecond)

	assert.Equal(t, "partial", status.Status)
	assert.Equal(t, 2, status.Completed)
	require.Len(t, status.Results, 2)
	assert.True(t, status.Results[0].Success)
	assert.Equal(t, 3, status.Results[0].Total)
	assert.False(t, status.Results[1].Success)
	assert.Equal(t, models.ErrCodeFetch, status.Results[1].Error.Code)

	select {
	case r := <-received:
		body := <-bodies
		assert.True(t, webhook.Verify(secret, body, r.Header.Get(webhook.SignatureHeader)))
		var ev webhook.Event
		require.NoError(t, json.Unmarshal(body, &ev))
		assert.Equal(t, webhook.EventBatchCompleted, ev.Type)
		assert.Equal(t, accepted.ID, ev.JobID)
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestBatch_Limits(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodPost, "/api/v1/batch/extract", map[string]any{
		"urls":   []string{"https://a.example", "https://b.example", "https://c.example", "https://d.example"},
		"fields": tableFields(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/v1/batch/batch-unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	w := api.do(http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, Version, resp.Version)
	assert.Equal(t, "memory", resp.MemoryBackend)
}

func TestStatusFor(t *testing.T) {
	tests := map[string]int{
		models.ErrCodeInvalidInput: http.StatusBadRequest,
		models.ErrCodeFetch:        http.StatusBadGateway,
		models.ErrCodeTimeout:      http.StatusGatewayTimeout,
		models.ErrCodeParse:        http.StatusUnprocessableEntity,
		models.ErrCodeNotFound:     http.StatusNotFound,
		models.ErrCodeRateLimited:  http.StatusTooManyRequests,
		models.ErrCodeUnauthorized: http.StatusUnauthorized,
		models.ErrCodeInternal:     http.StatusInternalServerError,
		"SOMETHING_ELSE":           http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, StatusFor(code), code)
	}
}
