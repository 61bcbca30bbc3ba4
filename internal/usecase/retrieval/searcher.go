package retrieval

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridqa/internal/domain"
	"github.com/kailas-cloud/hybridqa/internal/domain/hit"
	"github.com/kailas-cloud/hybridqa/internal/logger"
)

// Stage names retrieval failures for callers that map them to responses.
type Stage string

const (
	StageEmbed        Stage = "embed"
	StageVectorSearch Stage = "vector_search"
)

// Error attributes a retrieval failure to the stage that produced it.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string { return string(e.Stage) + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Searcher embeds a query and returns nearest neighbours from one index.
type Searcher struct {
	embed Embedder
	index Index
}

// NewSearcher creates a Searcher.
func NewSearcher(embed Embedder, index Index) *Searcher {
	return &Searcher{embed: embed, index: index}
}

// Search returns up to limit hits in the index's descending-similarity order.
// Threshold filtering is left to the caller.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]hit.Hit, error) {
	log := logger.FromContext(ctx)

	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, &Error{Stage: StageEmbed, Err: err}
	}
	vec := domain.Normalize(res.Embedding)

	start := time.Now()
	hits, err := s.index.Search(ctx, vec, limit)
	if err != nil {
		return nil, &Error{Stage: StageVectorSearch, Err: fmt.Errorf("search %s: %w", s.index.Name(), err)}
	}

	log.Debug("vector search",
		zap.String("collection", s.index.Name()),
		zap.Int("limit", limit),
		zap.Int("hits", len(hits)),
		zap.Duration("duration", time.Since(start)),
	)
	return hits, nil
}
