package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/sift/models"
)

func newEngine(t *testing.T, opts Options) *HTTPEngine {
	t.Helper()
	e, err := NewHTTPEngine(opts)
	require.NoError(t, err)
	return e
}

func TestHTTPEngine_FetchHTML(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title> Shop </title></head><body><h1>Hi</h1></body></html>`)
	}))
	defer srv.Close()

	res, err := newEngine(t, Options{}).Fetch(context.Background(), &FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "Shop", res.Title)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.HTML, "<h1>Hi</h1>")
	assert.Equal(t, "http", res.EngineName)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestHTTPEngine_DecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Café" in Latin-1.
		w.Write([]byte("<html><body><p>Caf\xe9</p></body></html>"))
	}))
	defer srv.Close()

	res, err := newEngine(t, Options{}).Fetch(context.Background(), &FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Contains(t, res.HTML, "Café")
}

func TestHTTPEngine_EmptyBodyIsEmptyDocument(t *testing.T) {
	for _, ct := range []string{"text/html; charset=utf-8", "text/html", ""} {
		t.Run(ct, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ct != "" {
					w.Header().Set("Content-Type", ct)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			res, err := newEngine(t, Options{}).Fetch(context.Background(), &FetchRequest{URL: srv.URL})
			require.NoError(t, err)
			assert.Equal(t, "", res.HTML)
			assert.Equal(t, "", res.Title)
			assert.Equal(t, http.StatusOK, res.StatusCode)
		})
	}
}

func TestHTTPEngine_Non2xxIsFetchError(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(status)
				fmt.Fprint(w, "<html></html>")
			}))
			defer srv.Close()

			res, err := newEngine(t, Options{}).Fetch(context.Background(), &FetchRequest{URL: srv.URL})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, models.HasCode(err, models.ErrCodeFetch))
		})
	}
}

func TestHTTPEngine_NonHTMLIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	_, err := newEngine(t, Options{}).Fetch(context.Background(), &FetchRequest{URL: srv.URL})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.ErrCodeParse))
}

func TestHTTPEngine_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := newEngine(t, Options{Timeout: 50 * time.Millisecond}).Fetch(context.Background(), &FetchRequest{URL: srv.URL})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.ErrCodeTimeout))
	assert.True(t, models.IsFetchError(err))
}

func TestHTTPEngine_RedirectLimit(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	_, err := newEngine(t, Options{MaxRedirects: 5}).Fetch(context.Background(), &FetchRequest{URL: srv.URL + "/"})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.ErrCodeFetch))
}

func TestHTTPEngine_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><title>New</title></html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := newEngine(t, Options{}).Fetch(context.Background(), &FetchRequest{URL: srv.URL + "/old"})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/new", res.FinalURL)
	assert.Equal(t, "New", res.Title)
}

func TestHTTPEngine_UnresolvableHost(t *testing.T) {
	_, err := newEngine(t, Options{Timeout: 5 * time.Second}).Fetch(context.Background(), &FetchRequest{URL: "http://nonexistent.invalid"})
	require.Error(t, err)
	assert.True(t, models.IsFetchError(err))
}

func TestHTTPEngine_BadProxy(t *testing.T) {
	_, err := NewHTTPEngine(Options{Proxy: "://bad"})
	assert.Error(t, err)
}
