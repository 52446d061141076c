// Package engine is the fetch boundary: it resolves a URL to decoded HTML.
package engine

import (
	"context"
	"time"
)

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier.
	Name() string

	// Fetch retrieves the page content for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	// Timeout overrides the engine default when positive.
	Timeout time.Duration
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML        string
	Title       string
	StatusCode  int
	FinalURL    string
	ContentType string
	EngineName  string
}

// Options configures an HTTPEngine.
type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	UserAgent    string
	Proxy        string
	MaxBodyBytes int64
}

// DefaultUserAgent is a current desktop Chrome user agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// DefaultOptions returns the standard fetch limits.
func DefaultOptions() Options {
	return Options{
		Timeout:      15 * time.Second,
		MaxRedirects: 5,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: 10 << 20,
	}
}
