package embedding

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridqa/internal/domain"
	"github.com/kailas-cloud/hybridqa/internal/metrics"
)

const warmupProbe = "warm-up"

// WarmupPolicy bounds the background readiness probe.
type WarmupPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultWarmupPolicy retries for roughly two minutes.
func DefaultWarmupPolicy() WarmupPolicy {
	return WarmupPolicy{MaxAttempts: 8, BaseDelay: time.Second}
}

// Gate rejects embedding calls until the model has answered one probe, then
// normalises and dimension-checks every vector it returns.
type Gate struct {
	inner      domain.Embedder
	dimensions int
	ready      atomic.Bool
	logger     *zap.Logger
}

// NewGate wraps inner. dimensions <= 0 disables the dimension check.
func NewGate(inner domain.Embedder, dimensions int, logger *zap.Logger) *Gate {
	return &Gate{inner: inner, dimensions: dimensions, logger: logger}
}

// Ready reports whether warm-up has succeeded.
func (g *Gate) Ready() bool { return g.ready.Load() }

// Warm embeds a probe text with exponential backoff until it succeeds with the
// expected dimension, the attempts run out, or ctx ends.
func (g *Gate) Warm(ctx context.Context, policy WarmupPolicy) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	delay := policy.BaseDelay
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		lastErr = g.probe(ctx)
		if lastErr == nil {
			g.ready.Store(true)
			metrics.EmbeddingReady.Set(1)
			g.logger.Info("Embedding service ready", zap.Int("attempt", attempt))
			return nil
		}

		g.logger.Warn("Embedding warm-up failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Error(lastErr),
		)
		if attempt == policy.MaxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("embedding warm-up: %w", ctx.Err())
		case <-timer.C:
		}
		delay *= 2
	}
	return fmt.Errorf("embedding warm-up: %w", lastErr)
}

func (g *Gate) probe(ctx context.Context) error {
	res, err := g.inner.Embed(ctx, warmupProbe)
	if err != nil {
		return err //nolint:wrapcheck // wrapped by Warm
	}
	return g.checkDims(res.Embedding)
}

// Embed implements domain.Embedder.
func (g *Gate) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if !g.Ready() {
		return domain.EmbeddingResult{}, fmt.Errorf("embedding model: %w", domain.ErrServiceNotReady)
	}
	res, err := g.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // transparent decorator
	}
	if err := g.checkDims(res.Embedding); err != nil {
		return domain.EmbeddingResult{}, err
	}
	res.Embedding = domain.Normalize(res.Embedding)
	return res, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (g *Gate) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if !g.Ready() {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embedding model: %w", domain.ErrServiceNotReady)
	}

	var (
		res domain.BatchEmbeddingResult
		err error
	)
	if be, ok := g.inner.(domain.BatchEmbedder); ok {
		res, err = be.BatchEmbed(ctx, texts)
	} else {
		res, err = domain.BatchFallback(ctx, g.inner, texts)
	}
	if err != nil {
		return domain.BatchEmbeddingResult{}, err //nolint:wrapcheck // transparent decorator
	}

	for i, v := range res.Embeddings {
		if err := g.checkDims(v); err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("text %d: %w", i, err)
		}
		res.Embeddings[i] = domain.Normalize(v)
	}
	return res, nil
}

// HealthCheck fails until warm-up succeeds, then delegates when possible.
func (g *Gate) HealthCheck(ctx context.Context) error {
	if !g.Ready() {
		return domain.ErrServiceNotReady
	}
	if hc, ok := g.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (g *Gate) checkDims(v []float32) error {
	if g.dimensions <= 0 {
		return nil
	}
	return domain.CheckDimensions(v, g.dimensions)
}
