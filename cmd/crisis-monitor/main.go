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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/crisislab/crisis-monitor/internal/api"
	"github.com/crisislab/crisis-monitor/internal/archive"
	"github.com/crisislab/crisis-monitor/internal/cache"
	"github.com/crisislab/crisis-monitor/internal/config"
	"github.com/crisislab/crisis-monitor/internal/ingestion"
	"github.com/crisislab/crisis-monitor/internal/logging"
	"github.com/crisislab/crisis-monitor/internal/observability"
	"github.com/crisislab/crisis-monitor/internal/quality"
	"github.com/crisislab/crisis-monitor/internal/search"
	"github.com/crisislab/crisis-monitor/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	clock := clockwork.NewRealClock()
	enhancer := quality.NewEnhancer()
	metrics := observability.NewMetrics()

	db, err := archive.NewSQLiteDB(cfg.Archive.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize archive: %v", err)
	}
	defer db.Close()

	store := cache.NewStore(cfg.Cache.Dir, cfg.Cache.RetentionDays, clock)
	if err := store.Load(); err != nil {
		logging.Fatalf("Failed to load cache: %v", err)
	}

	sources := buildSources(cfg, enhancer, clock)
	aggregator := ingestion.NewAggregator(sources, enhancer, clock, cfg.Sources.FetchTimeout, metrics)

	svc := service.New(service.Options{
		Store:           store,
		Repo:            db,
		Aggregator:      aggregator,
		Engine:          search.NewEngine(search.DefaultWeights(), clock),
		Metrics:         metrics,
		Clock:           clock,
		RetentionDays:   cfg.Cache.RetentionDays,
		RefreshInterval: cfg.Cache.RefreshInterval,
		WorkerCount:     cfg.Worker.Count,
		WorkerBuffer:    cfg.Worker.BufferSize,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimit))

	handler := api.NewHandler(svc)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	svc.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

func buildSources(cfg *config.Config, enhancer *quality.Enhancer, clock clockwork.Clock) []ingestion.Source {
	var sources []ingestion.Source

	if cfg.Sources.USGSEnabled {
		sources = append(sources, ingestion.NewUSGSSource(cfg.Sources.USGSFeeds, cfg.Sources.FetchTimeout))
	}
	if cfg.Sources.ReliefWebEnabled {
		sources = append(sources, ingestion.NewReliefWebSource(cfg.Sources.ReliefWebURL, cfg.Sources.FetchTimeout, clock))
	}
	if cfg.Sources.GDACSEnabled {
		sources = append(sources, ingestion.NewGDACSSource(cfg.Sources.GDACSURL, cfg.Sources.FetchTimeout, clock))
	}
	if cfg.Sources.NewsEnabled {
		sources = append(sources, ingestion.NewNewsSource(cfg.Sources.NewsFeeds, cfg.Sources.FetchTimeout, enhancer, clock))
	}

	if cfg.Sources.LLMEnabled && cfg.Sources.LLMAPIKey != "" {
		sources = append(sources, ingestion.NewLLMSource(
			cfg.Sources.LLMURL,
			cfg.Sources.LLMModel,
			cfg.Sources.LLMAPIKey,
			cfg.Sources.FetchTimeout,
			clock,
		))
	} else {
		slog.Info("LLM source disabled")
	}

	return sources
}
