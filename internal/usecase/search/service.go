package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridqa/internal/domain"
	"github.com/kailas-cloud/hybridqa/internal/domain/fusion"
	"github.com/kailas-cloud/hybridqa/internal/domain/recipe"
	"github.com/kailas-cloud/hybridqa/internal/logger"
	"github.com/kailas-cloud/hybridqa/internal/metrics"
)

const path = "search"

// Defaults for the recipe path.
const (
	DefaultOverfetch = 20
	DefaultCap       = 6
	DefaultEngine    = "Milvus + Postgres"
)

// Options tunes the recipe search pipeline. Zero values take the defaults;
// a nil Threshold takes fusion.DefaultThreshold, an explicit 0 keeps every hit.
type Options struct {
	Overfetch int
	Cap       int
	Threshold *float64
	Engine    string
}

func (o Options) withDefaults() Options {
	if o.Overfetch <= 0 {
		o.Overfetch = DefaultOverfetch
	}
	if o.Cap <= 0 {
		o.Cap = DefaultCap
	}
	if o.Threshold == nil {
		t := fusion.DefaultThreshold
		o.Threshold = &t
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	return o
}

// QueryInfo explains how the query was interpreted.
type QueryInfo struct {
	Semantic string
	Filters  []string
	SQLQuery string
	Engine   string
}

// Response is the fused recipe list with its interpretation.
type Response struct {
	Results   []fusion.Result[recipe.Recipe]
	QueryInfo QueryInfo
}

// Service runs hybrid recipe search: intent, ANN retrieval, relational fusion.
type Service struct {
	intent    IntentExtractor
	retriever Retriever
	recipes   RecipeLoader
	opts      Options
}

// New creates a search service.
func New(ie IntentExtractor, r Retriever, recipes RecipeLoader, opts Options) *Service {
	return &Service{intent: ie, retriever: r, recipes: recipes, opts: opts.withDefaults()}
}

// Search answers a free-text recipe query. An empty result set is a normal outcome.
func (s *Service) Search(ctx context.Context, query string) (Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Response{}, fmt.Errorf("%w: query is required", domain.ErrValidation)
	}
	log := logger.FromContext(ctx)

	in := s.intent.Extract(query)
	filters := in.FilterStrings()
	for _, f := range filters {
		metrics.IntentFiltersTotal.WithLabelValues(f).Inc()
	}
	info := QueryInfo{
		Semantic: in.SemanticQuery,
		Filters:  filters,
		SQLQuery: in.SQLPreview(),
		Engine:   s.opts.Engine,
	}

	log.Info("hybrid search",
		zap.String("query", query),
		zap.String("semantic", in.SemanticQuery),
		zap.String("filters", info.SQLQuery),
		zap.Strings("matched", in.MatchedKeywords),
	)

	hits, err := s.retriever.Search(ctx, in.SemanticQuery, s.opts.Overfetch)
	if err != nil {
		return Response{}, fmt.Errorf("retrieve: %w", err)
	}
	metrics.RetrievalHits.WithLabelValues(path, "returned").Observe(float64(len(hits)))
	metrics.RetrievalHits.WithLabelValues(path, "above_threshold").
		Observe(float64(len(fusion.AboveThreshold(hits, *s.opts.Threshold))))

	results, err := fusion.Fuse(ctx, hits, in.Filters,
		fusion.Options{Threshold: *s.opts.Threshold, Cap: s.opts.Cap}, s.recipes)
	if err != nil {
		log.Error("relational stage failed", zap.String("query", query), zap.Error(err))
		return Response{}, fmt.Errorf("fuse: %w", err)
	}
	metrics.RetrievalHits.WithLabelValues(path, "fused").Observe(float64(len(results)))

	return Response{Results: results, QueryInfo: info}, nil
}
