package catalog

import (
	"context"

	"github.com/kailas-cloud/hybridqa/internal/domain"
	"github.com/kailas-cloud/hybridqa/internal/domain/recipe"
)

// RecipeStore reads and replaces the relational catalogue.
type RecipeStore interface {
	ListForSync(ctx context.Context) ([]recipe.Recipe, error)
	Seed(ctx context.Context, recipes []recipe.Recipe) (int, error)
}

// VectorStore holds one vector per recipe id.
type VectorStore interface {
	Ensure(ctx context.Context) error
	UpsertVectors(ctx context.Context, ids []int64, vecs [][]float32) error
}

// Embedder vectorizes descriptions in one call.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
