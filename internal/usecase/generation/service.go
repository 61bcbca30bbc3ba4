package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridqa/internal/domain"
	"github.com/kailas-cloud/hybridqa/internal/logger"
	"github.com/kailas-cloud/hybridqa/internal/metrics"
)

// PlaceholderName labels the no-provider mode in logs and metrics.
const PlaceholderName = "placeholder"

// Generator answers a question from a context using one provider fixed at construction.
type Generator struct {
	provider Provider
}

// Select picks the first non-nil provider in priority order.
// With none, the generator echoes the context through Placeholder.
// The choice is final: a failing provider never falls through to the next one.
func Select(providers ...Provider) *Generator {
	for _, p := range providers {
		if p != nil {
			return &Generator{provider: p}
		}
	}
	return &Generator{}
}

// ProviderName returns the selected provider name.
func (g *Generator) ProviderName() string {
	if g.provider == nil {
		return PlaceholderName
	}
	return g.provider.Name()
}

// Generate builds the prompt and calls the selected provider once (plus any
// rate-limit retries the provider itself performs).
func (g *Generator) Generate(ctx context.Context, query, contextText string) (string, error) {
	log := logger.FromContext(ctx)

	if g.provider == nil {
		log.Warn("No generation provider configured, returning placeholder")
		metrics.GenerationRequestsTotal.WithLabelValues(PlaceholderName, "success").Inc()
		return Placeholder(contextText), nil
	}

	name := g.provider.Name()
	start := time.Now()

	answer, err := g.provider.Complete(ctx, BuildPrompt(query, contextText))

	metrics.GenerationRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(name, errorStatus(err)).Inc()
		log.Error("Generation failed", zap.String("provider", name), zap.Error(err))
		return "", fmt.Errorf("generate with %s: %w", name, err)
	}
	metrics.GenerationRequestsTotal.WithLabelValues(name, "success").Inc()

	return strings.TrimSpace(answer), nil
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrProviderRateLimited):
		return "rate_limited"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
