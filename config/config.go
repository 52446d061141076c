// Package config loads service configuration from SIFT_* environment
// variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/sift/detector"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Fetch     FetchConfig
	Detection DetectionConfig
	Memory    MemoryConfig
	Cache     CacheConfig
	Batch     BatchConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// FetchConfig controls the page fetch boundary.
type FetchConfig struct {
	Timeout      time.Duration // default: 15s
	MaxRedirects int           // default: 5
	UserAgent    string        // default: desktop Chrome
	Proxy        string
	MaxBodyBytes int64 // default: 10 MiB
}

// DetectionConfig holds the tunable detection heuristics.
type DetectionConfig struct {
	// DefaultThreshold applies when a request sets no confidence_threshold.
	DefaultThreshold float64 // default: 0.6

	SelectThreshold   int     // default: 75
	ResultCap         int     // default: 20
	CoverageRatio     float64 // default: 0.3
	HighConfidenceCut int     // default: 85
	MemoryBoost       int     // default: 5
	MemoryCap         int     // default: 98
}

// Weights converts the configuration to detector weights, starting from the
// detector defaults.
func (d DetectionConfig) Weights() detector.Weights {
	w := detector.DefaultWeights()
	w.SelectThreshold = d.SelectThreshold
	w.ResultCap = d.ResultCap
	w.CoverageRatio = d.CoverageRatio
	w.HighConfidenceCut = d.HighConfidenceCut
	w.MemoryBoost = d.MemoryBoost
	w.MemoryCap = d.MemoryCap
	return w
}

// MemoryConfig selects the pattern memory backend.
type MemoryConfig struct {
	// Backend is "memory" (in-process) or "redis". default: "memory"
	Backend string

	RedisAddr     string // default: "localhost:6379"
	RedisPassword string
	RedisDB       int
	KeyPrefix     string // default: "sift:memory:"

	// TTL expires Redis entries; 0 keeps them forever.
	TTL time.Duration
}

// CacheConfig controls the analysis cache.
type CacheConfig struct {
	MaxEntries int           // default: 1000
	TTL        time.Duration // default: 1h
}

// BatchConfig controls batch extraction jobs.
type BatchConfig struct {
	MaxURLs     int // default: 100
	Concurrency int // default: 5
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SIFT_HOST", "0.0.0.0"),
			Port: envIntOr("SIFT_PORT", 8080),
			Mode: envOr("SIFT_MODE", "release"),
		},
		Log: LogConfig{
			Level:  envOr("SIFT_LOG_LEVEL", "info"),
			Format: envOr("SIFT_LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SIFT_AUTH_ENABLED", true),
			APIKeys: envSliceOr("SIFT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SIFT_RATE_RPS", 5.0),
			Burst:             envIntOr("SIFT_RATE_BURST", 10),
		},
		Fetch: FetchConfig{
			Timeout:      envDurationOr("SIFT_FETCH_TIMEOUT", 15*time.Second),
			MaxRedirects: envIntOr("SIFT_FETCH_MAX_REDIRECTS", 5),
			UserAgent:    os.Getenv("SIFT_USER_AGENT"),
			Proxy:        os.Getenv("SIFT_PROXY"),
			MaxBodyBytes: int64(envIntOr("SIFT_FETCH_MAX_BODY_BYTES", 10<<20)),
		},
		Detection: DetectionConfig{
			DefaultThreshold:  envFloatOr("SIFT_CONFIDENCE_THRESHOLD", 0.6),
			SelectThreshold:   envIntOr("SIFT_SELECT_THRESHOLD", 75),
			ResultCap:         envIntOr("SIFT_RESULT_CAP", 20),
			CoverageRatio:     envFloatOr("SIFT_COVERAGE_RATIO", 0.3),
			HighConfidenceCut: envIntOr("SIFT_MEMORY_CUT", 85),
			MemoryBoost:       envIntOr("SIFT_MEMORY_BOOST", 5),
			MemoryCap:         envIntOr("SIFT_MEMORY_CAP", 98),
		},
		Memory: MemoryConfig{
			Backend:       envOr("SIFT_MEMORY_BACKEND", "memory"),
			RedisAddr:     envOr("SIFT_REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("SIFT_REDIS_PASSWORD"),
			RedisDB:       envIntOr("SIFT_REDIS_DB", 0),
			KeyPrefix:     envOr("SIFT_MEMORY_KEY_PREFIX", "sift:memory:"),
			TTL:           envDurationOr("SIFT_MEMORY_TTL", 0),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SIFT_CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("SIFT_CACHE_TTL", time.Hour),
		},
		Batch: BatchConfig{
			MaxURLs:     envIntOr("SIFT_BATCH_MAX_URLS", 100),
			Concurrency: envIntOr("SIFT_BATCH_CONCURRENCY", 5),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
