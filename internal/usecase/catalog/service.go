package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultSyncBatch is the number of descriptions embedded per call.
const DefaultSyncBatch = 32

// Service seeds the recipe catalogue and mirrors it into the vector index.
type Service struct {
	recipes RecipeStore
	vectors VectorStore
	embed   Embedder
	batch   int
	logger  *zap.Logger
}

// New creates a catalog service. vectors and embed may be nil for seed-only use.
func New(recipes RecipeStore, vectors VectorStore, embed Embedder, logger *zap.Logger) *Service {
	return &Service{recipes: recipes, vectors: vectors, embed: embed, batch: DefaultSyncBatch, logger: logger}
}

// Seed replaces the relational catalogue with the built-in samples.
func (s *Service) Seed(ctx context.Context) (int, error) {
	rs, err := SampleRecipes()
	if err != nil {
		return 0, err
	}
	n, err := s.recipes.Seed(ctx, rs)
	if err != nil {
		return 0, fmt.Errorf("seed recipes: %w", err)
	}
	s.logger.Info("recipes seeded", zap.Int("count", n))
	return n, nil
}

// Sync embeds every recipe description and upserts it under the recipe id.
// Re-running is idempotent.
func (s *Service) Sync(ctx context.Context) (int, error) {
	if s.vectors == nil || s.embed == nil {
		return 0, fmt.Errorf("sync requires a vector store and an embedder")
	}
	if err := s.vectors.Ensure(ctx); err != nil {
		return 0, fmt.Errorf("ensure recipe collection: %w", err)
	}

	rs, err := s.recipes.ListForSync(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recipes: %w", err)
	}

	synced := 0
	for start := 0; start < len(rs); start += s.batch {
		end := min(start+s.batch, len(rs))
		part := rs[start:end]

		ids := make([]int64, len(part))
		texts := make([]string, len(part))
		for i, r := range part {
			ids[i] = r.ID
			texts[i] = r.Description
		}

		emb, err := s.embed.BatchEmbed(ctx, texts)
		if err != nil {
			return synced, fmt.Errorf("embed recipes %d-%d: %w", start, end-1, err)
		}
		if err := s.vectors.UpsertVectors(ctx, ids, emb.Embeddings); err != nil {
			return synced, fmt.Errorf("upsert recipes %d-%d: %w", start, end-1, err)
		}
		synced += len(part)
		s.logger.Debug("recipes synced", zap.Int("done", synced), zap.Int("total", len(rs)))
	}

	s.logger.Info("recipe vectors synced", zap.Int("count", synced))
	return synced, nil
}
