package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/use-agent/sift/api"
	"github.com/use-agent/sift/api/handler"
	"github.com/use-agent/sift/cache"
	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/detector"
	"github.com/use-agent/sift/engine"
	"github.com/use-agent/sift/extractor"
	"github.com/use-agent/sift/memory"
	"github.com/use-agent/sift/scraper"
	"github.com/use-agent/sift/semantic"
	"github.com/use-agent/sift/templates"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("sift starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"memory", cfg.Memory.Backend,
	)

	// ── 3. Pattern memory ───────────────────────────────────────────
	store, stats, closeStore, err := openMemory(cfg.Memory)
	if err != nil {
		slog.Error("failed to open pattern memory", "backend", cfg.Memory.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// ── 4. Fetch engine ─────────────────────────────────────────────
	eng, err := engine.NewHTTPEngine(engine.Options{
		Timeout:      cfg.Fetch.Timeout,
		MaxRedirects: cfg.Fetch.MaxRedirects,
		UserAgent:    cfg.Fetch.UserAgent,
		Proxy:        cfg.Fetch.Proxy,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	})
	if err != nil {
		slog.Error("failed to initialise fetch engine", "error", err)
		os.Exit(1)
	}

	// ── 5. Detection and extraction ─────────────────────────────────
	lib := semantic.Default()
	det := detector.New(cfg.Detection.Weights(), lib, store)
	sc := scraper.New(eng, det, extractor.New(lib))

	// ── 6. Caches, templates, batches ───────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	defer cc.Stop()
	batches := handler.NewBatches(sc, cfg.Batch.MaxURLs, cfg.Batch.Concurrency)
	defer batches.Stop()

	// ── 7. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(cfg, api.Deps{
		Scraper:   sc,
		Cache:     cc,
		Templates: templates.NewStore(),
		Batches:   batches,
		Health:    handler.Health(cfg.Memory.Backend, stats, time.Now()),
	})

	// ── 8. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("sift stopped", "in_flight", sc.InFlight())
}

// openMemory builds the configured pattern memory backend. A Redis backend
// must answer PING at startup.
func openMemory(cfg config.MemoryConfig) (memory.Store, handler.MemoryStats, func(), error) {
	switch cfg.Backend {
	case "", "memory":
		local := memory.NewLocal()
		stats := func(context.Context) (int, error) { return local.Len(), nil }
		return local, stats, func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		rs := memory.NewRedisStore(client, cfg.KeyPrefix, cfg.TTL)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				slog.Warn("closing redis client", "error", err)
			}
		}
		return rs, rs.Len, closeFn, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown memory backend %q (want memory or redis)", cfg.Backend)
	}
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
