package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridqa/internal/app"
	"github.com/kailas-cloud/hybridqa/internal/config"
	dbmilvus "github.com/kailas-cloud/hybridqa/internal/db/milvus"
	dbpostgres "github.com/kailas-cloud/hybridqa/internal/db/postgres"
	"github.com/kailas-cloud/hybridqa/internal/domain/intent"
	logpkg "github.com/kailas-cloud/hybridqa/internal/logger"
	"github.com/kailas-cloud/hybridqa/internal/metrics"
	reciperepo "github.com/kailas-cloud/hybridqa/internal/repository/recipe"
	chiTransport "github.com/kailas-cloud/hybridqa/internal/transport/chi"
	"github.com/kailas-cloud/hybridqa/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/hybridqa/internal/usecase/health"
	queryuc "github.com/kailas-cloud/hybridqa/internal/usecase/query"
	"github.com/kailas-cloud/hybridqa/internal/usecase/retrieval"
	searchuc "github.com/kailas-cloud/hybridqa/internal/usecase/search"
	"github.com/kailas-cloud/hybridqa/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting hybridqa API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("milvus", cfg.Vector.Address),
		zap.Bool("cache", cfg.Cache.Enabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	if err := stores.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure collections: %w", err)
	}
	milvusPinger := dbmilvus.NewPinger(stores.Milvus, cfg.Vector.ChunkCollection)
	if err := milvusPinger.WaitForReady(ctx, time.Duration(cfg.Vector.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("milvus not ready: %w", err)
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterQueryMetrics()

	// Embedding chain, gated until the model answers a probe
	embedder := app.BuildEmbedder(cfg, stores.Cache, logger)
	go func() {
		if err := embedder.Warm(ctx, app.WarmupPolicy(cfg.Embedding)); err != nil {
			logger.Error("Embedding warm-up failed", zap.Error(err))
		}
	}()

	providers, err := app.BuildProviders(ctx, cfg.Generation)
	if err != nil {
		return err
	}
	generator := generation.Select(providers...)
	logger.Info("Generation provider selected", zap.String("provider", generator.ProviderName()))

	searchSvc := searchuc.New(
		intent.NewDefaultExtractor(),
		retrieval.NewSearcher(embedder, stores.Recipes),
		reciperepo.New(stores.DB),
		searchuc.Options{
			Overfetch: cfg.Search.Overfetch,
			Cap:       cfg.Search.ResultCap,
			Threshold: cfg.Search.Threshold,
		},
	)
	querySvc := queryuc.New(
		retrieval.NewSearcher(embedder, stores.Chunks),
		generator,
		queryuc.Options{
			TopK:          cfg.Search.TopK,
			Threshold:     cfg.Search.Threshold,
			ContextBudget: cfg.Search.ContextBudget,
		},
	)

	// Pass a nil interface, not a typed nil pointer, when the cache is off.
	var cachePinger healthuc.Pinger
	if stores.Cache != nil {
		cachePinger = stores.Cache
	}
	healthSvc := healthuc.New(healthuc.Components{
		Postgres:  dbpostgres.NewPinger(stores.DB),
		Milvus:    milvusPinger,
		Cache:     cachePinger,
		Embedding: embedder,
	})

	server := chiTransport.NewServer(searchSvc, querySvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:        cfg.Auth.APIKeys,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout(),
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	return nil
}
