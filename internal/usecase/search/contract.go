package search

import (
	"context"

	"github.com/kailas-cloud/hybridqa/internal/domain/hit"
	"github.com/kailas-cloud/hybridqa/internal/domain/intent"
	"github.com/kailas-cloud/hybridqa/internal/domain/recipe"
)

// IntentExtractor splits a query into a semantic part and structured filters.
type IntentExtractor interface {
	Extract(query string) intent.Intent
}

// Retriever returns nearest neighbours for a semantic query.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]hit.Hit, error)
}

// RecipeLoader fetches recipe rows by id under filter predicates.
type RecipeLoader interface {
	FindByIDs(ctx context.Context, ids []int64, filters []intent.Predicate) ([]recipe.Recipe, error)
}
