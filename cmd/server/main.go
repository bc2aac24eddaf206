// Package main is the entrypoint for the Podzine web server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/podzine/internal/ai/providers"
	"github.com/kiranshivaraju/podzine/internal/api"
	"github.com/kiranshivaraju/podzine/internal/api/handler"
	"github.com/kiranshivaraju/podzine/internal/api/stream"
	"github.com/kiranshivaraju/podzine/internal/cache"
	"github.com/kiranshivaraju/podzine/internal/config"
	"github.com/kiranshivaraju/podzine/internal/job"
	"github.com/kiranshivaraju/podzine/internal/pipeline"
	"github.com/kiranshivaraju/podzine/internal/store"
	"github.com/kiranshivaraju/podzine/internal/web"
	"github.com/kiranshivaraju/podzine/pkg/models"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load config, failing fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel,
	}))
	slog.SetDefault(logger)
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	go a.hub.Run(ctx)

	// Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// app is the wired server. close releases whatever newApp opened.
type app struct {
	router  http.Handler
	hub     *stream.Hub
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	runnerCfg := pipeline.RunnerConfig{
		UploadDir: cfg.Server.UploadDir,
		Timeout:   cfg.AI.InferenceTimeout,
		CacheTTL:  cfg.Redis.TranscriptTTL,
	}
	var dbPinger, cachePinger handler.Pinger
	deps := api.Dependencies{}

	// Article archive (optional)
	if cfg.Database.URL != "" {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		slog.Info("database connected")

		if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database migrations applied")

		pgStore := store.NewPostgresStore(pool)
		runnerCfg.Archive = pgStore
		dbPinger = pgStore
		deps.ListArticles = handler.NewListArticlesHandler(pgStore)
		deps.GetArticle = handler.NewGetArticleHandler(pgStore)
	} else {
		slog.Info("article archive disabled")
	}

	// Transcript cache (optional)
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("create redis cache: %w", err)
		}
		a.closers = append(a.closers, func() { _ = redisCache.Close() })

		if err := redisCache.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis connected")

		runnerCfg.Cache = redisCache
		cachePinger = redisCache
	} else {
		slog.Info("transcript cache disabled")
	}

	aiProvider, err := providers.New(ctx, cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", aiProvider.Name())

	// The hub reads the store for new subscribers and the store publishes
	// to the hub, so the observer closes over a variable set below.
	var hub *stream.Hub
	jobs := job.NewStore(job.WithObserver(func(s models.Snapshot) { hub.Publish(s) }))
	hub = stream.NewHub(jobs.Snapshot)
	a.hub = hub

	svc := pipeline.NewService(jobs, pipeline.NewRunner(aiProvider, runnerCfg))
	pages := web.MustPages()

	deps.IndexHandler = handler.NewIndexHandler(pages, cfg.Server.MaxUploadBytes)
	deps.UploadHandler = handler.NewUploadHandler(svc, pages, cfg.Server.MaxUploadBytes)
	deps.StatusHandler = handler.NewStatusHandler(svc)
	deps.JobHandler = handler.NewJobHandler(svc)
	deps.ResultHandler = handler.NewResultHandler(svc, pages)
	deps.HealthHandler = handler.NewHealthHandler(aiProvider.Name(), dbPinger, cachePinger)
	deps.StatusStream = hub

	a.router = api.NewRouter(deps)
	return a, nil
}
