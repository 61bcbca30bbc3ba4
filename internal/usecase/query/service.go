package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridqa/internal/domain"
	"github.com/kailas-cloud/hybridqa/internal/domain/fusion"
	"github.com/kailas-cloud/hybridqa/internal/domain/ragcontext"
	"github.com/kailas-cloud/hybridqa/internal/logger"
	"github.com/kailas-cloud/hybridqa/internal/metrics"
	"github.com/kailas-cloud/hybridqa/internal/usecase/generation"
)

const path = "query"

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// Options tunes document QA. Zero values take the defaults; a nil Threshold
// takes fusion.DefaultThreshold.
type Options struct {
	TopK          int
	Threshold     *float64
	ContextBudget int
}

// Source is a chunk the answer was grounded on.
type Source struct {
	DocumentID int64
	Text       string
	Score      float64
}

// Answer is the generated reply and its sources in retrieval order.
type Answer struct {
	Answer  string
	Sources []Source
}

// Service answers questions over ingested documents.
type Service struct {
	retriever Retriever
	generator AnswerGenerator
	opts      Options
}

// New creates a query service.
func New(r Retriever, g AnswerGenerator, opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Threshold == nil {
		t := fusion.DefaultThreshold
		opts.Threshold = &t
	}
	if opts.ContextBudget <= 0 {
		opts.ContextBudget = ragcontext.DefaultBudget
	}
	return &Service{retriever: r, generator: g, opts: opts}
}

// Answer retrieves chunks for q and asks the generator. With no chunk above
// the threshold it answers "Not found in documents." without calling the generator.
func (s *Service) Answer(ctx context.Context, q string) (Answer, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return Answer{}, fmt.Errorf("%w: query is required", domain.ErrValidation)
	}
	log := logger.FromContext(ctx)

	hits, err := s.retriever.Search(ctx, q, s.opts.TopK)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve: %w", err)
	}
	metrics.RetrievalHits.WithLabelValues(path, "returned").Observe(float64(len(hits)))

	hits = fusion.AboveThreshold(hits, *s.opts.Threshold)
	metrics.RetrievalHits.WithLabelValues(path, "above_threshold").Observe(float64(len(hits)))

	if len(hits) == 0 {
		log.Info("no relevant chunks", zap.String("query", q))
		return Answer{Answer: generation.NotFoundAnswer, Sources: []Source{}}, nil
	}

	sources := make([]Source, len(hits))
	fragments := make([]string, len(hits))
	for i, h := range hits {
		sources[i] = Source{DocumentID: h.DocumentID(), Text: h.Text(), Score: h.Score()}
		fragments[i] = h.Text()
	}

	answer, err := s.generator.Generate(ctx, q, ragcontext.Build(fragments, s.opts.ContextBudget))
	if err != nil {
		return Answer{}, fmt.Errorf("generate: %w", err)
	}

	log.Info("answered",
		zap.String("query", q),
		zap.Int("sources", len(sources)),
	)
	return Answer{Answer: answer, Sources: sources}, nil
}
