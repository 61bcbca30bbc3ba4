// Package app wires configuration into the shared backend handles used by the
// API server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kailas-cloud/hybridqa/internal/config"
	dbmilvus "github.com/kailas-cloud/hybridqa/internal/db/milvus"
	dbpostgres "github.com/kailas-cloud/hybridqa/internal/db/postgres"
	dbredis "github.com/kailas-cloud/hybridqa/internal/db/redis"
	"github.com/kailas-cloud/hybridqa/internal/domain"
	"github.com/kailas-cloud/hybridqa/internal/metrics"
	"github.com/kailas-cloud/hybridqa/internal/repository/embcache"
	"github.com/kailas-cloud/hybridqa/internal/repository/vector"
	"github.com/kailas-cloud/hybridqa/internal/transport/anthropic"
	"github.com/kailas-cloud/hybridqa/internal/transport/gemini"
	"github.com/kailas-cloud/hybridqa/internal/transport/groq"
	openaiTransport "github.com/kailas-cloud/hybridqa/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/hybridqa/internal/usecase/embedding"
	"github.com/kailas-cloud/hybridqa/internal/usecase/generation"
)

// Stores holds the long-lived backend handles.
type Stores struct {
	DB      *gorm.DB
	Milvus  client.Client
	Cache   *dbredis.Store // nil when cache.addrs is empty
	Chunks  *vector.Index
	Recipes *vector.Index
	logger  *zap.Logger
}

// OpenStores connects postgres, milvus and the optional cache and waits for postgres.
func OpenStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Stores, error) {
	gdb, err := dbpostgres.Open(dbpostgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeSec) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	s := &Stores{DB: gdb, logger: logger}

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := dbpostgres.NewPinger(gdb).WaitForReady(ctx, readiness); err != nil {
		s.Close()
		return nil, fmt.Errorf("postgres not ready: %w", err)
	}
	logger.Info("Connected to postgres")

	mc, err := dbmilvus.Open(ctx, dbmilvus.Config{
		Address:  cfg.Vector.Address,
		Token:    cfg.Vector.Token,
		Username: cfg.Vector.Username,
		Password: cfg.Vector.Password,
		Database: cfg.Vector.Database,
		UseTLS:   cfg.Vector.UseTLS,
		Timeout:  time.Duration(cfg.Vector.ReadinessTimeout) * time.Second,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Milvus = mc
	s.Chunks = vector.NewIndex(mc, vector.Config{
		Name:       cfg.Vector.ChunkCollection,
		Kind:       vector.KindChunks,
		Dimensions: cfg.Embedding.Dimensions,
		NList:      cfg.Vector.NList,
		NProbe:     cfg.Vector.NProbe,
	})
	s.Recipes = vector.NewIndex(mc, vector.Config{
		Name:       cfg.Vector.RecipeCollection,
		Kind:       vector.KindRecords,
		Dimensions: cfg.Embedding.Dimensions,
		NList:      cfg.Vector.NList,
		NProbe:     cfg.Vector.NProbe,
	})
	logger.Info("Connected to milvus", zap.String("address", cfg.Vector.Address))

	if cfg.Cache.Enabled() {
		cache, err := dbredis.NewStore(dbredis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("create cache: %w", err)
		}
		s.Cache = cache
		if err := cache.WaitForReady(ctx, readiness); err != nil {
			s.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	return s, nil
}

// EnsureIndexes creates and loads both collections.
func (s *Stores) EnsureIndexes(ctx context.Context) error {
	for _, idx := range []*vector.Index{s.Chunks, s.Recipes} {
		if err := idx.Ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every open handle.
func (s *Stores) Close() {
	if s.Cache != nil {
		s.Cache.Close()
	}
	if s.Milvus != nil {
		if err := s.Milvus.Close(); err != nil {
			s.logger.Warn("close milvus", zap.Error(err))
		}
	}
	if s.DB != nil {
		dbpostgres.Close(s.DB, s.logger)
	}
}

// BuildEmbedder assembles the decorator chain: OpenAI-compatible -> Cached -> Instrumented -> Gate.
// cache may be nil.
func BuildEmbedder(cfg config.Config, cache *dbredis.Store, logger *zap.Logger) *embeddinguc.Gate {
	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:   cfg.Embedding.APIKey,
		BaseURL:  cfg.Embedding.BaseURL,
		Model:    cfg.Embedding.Model,
		Provider: cfg.Embedding.Provider,
		Logger:   logger,
	})

	var embedder domain.Embedder = base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Config{
			Model:      cfg.Embedding.Model,
			TTL:        time.Duration(cfg.Cache.TTLHours) * time.Hour,
			CacheTotal: metrics.EmbeddingCacheTotal,
			Logger:     logger,
		})
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger)

	return embeddinguc.NewGate(embedder, cfg.Embedding.Dimensions, logger)
}

// WarmupPolicy derives the embedding warm-up policy from config.
func WarmupPolicy(cfg config.EmbeddingConfig) embeddinguc.WarmupPolicy {
	p := embeddinguc.DefaultWarmupPolicy()
	if cfg.WarmupAttempts > 0 {
		p.MaxAttempts = cfg.WarmupAttempts
	}
	return p
}

// BuildProviders returns the configured generation providers in priority order:
// Groq, Gemini (with rate-limit retry), OpenAI, Anthropic. Providers without an
// API key are left out so that no typed nil reaches generation.Select.
func BuildProviders(ctx context.Context, cfg config.GenerationConfig) ([]generation.Provider, error) {
	var providers []generation.Provider

	if cfg.Groq.APIKey != "" {
		p, err := groq.New(groq.Config{
			APIKey:      cfg.Groq.APIKey,
			BaseURL:     cfg.Groq.BaseURL,
			Model:       cfg.Groq.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: float32(cfg.Temperature),
		})
		if err != nil {
			return nil, fmt.Errorf("groq: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.Gemini.APIKey != "" {
		p, err := gemini.New(ctx, gemini.Config{
			APIKey:      cfg.Gemini.APIKey,
			BaseURL:     cfg.Gemini.BaseURL,
			Model:       cfg.Gemini.Model,
			MaxTokens:   int32(cfg.MaxTokens), //nolint:gosec // bounded by config
			Temperature: float32(cfg.Temperature),
		})
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		providers = append(providers, generation.WithRateLimitRetry(p, generation.RetryPolicy{
			MaxAttempts: cfg.RateLimit.MaxAttempts,
			DefaultWait: time.Duration(cfg.RateLimit.DefaultWaitSec) * time.Second,
		}))
	}

	if cfg.OpenAI.APIKey != "" {
		p, err := openaiTransport.NewChat(openaiTransport.ChatConfig{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			MaxTokens:   int64(cfg.MaxTokens),
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.Anthropic.APIKey != "" {
		p, err := anthropic.New(anthropic.Config{
			APIKey:      cfg.Anthropic.APIKey,
			BaseURL:     cfg.Anthropic.BaseURL,
			Model:       cfg.Anthropic.Model,
			MaxTokens:   int64(cfg.MaxTokens),
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("anthropic: %w", err)
		}
		providers = append(providers, p)
	}

	return providers, nil
}
