package retrieval

import (
	"context"

	"github.com/kailas-cloud/hybridqa/internal/domain"
	"github.com/kailas-cloud/hybridqa/internal/domain/hit"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index runs ANN queries against one collection.
type Index interface {
	Name() string
	Search(ctx context.Context, vec []float32, topK int) ([]hit.Hit, error)
}
