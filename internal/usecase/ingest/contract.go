package ingest

import (
	"context"

	"github.com/kailas-cloud/hybridqa/internal/domain"
	"github.com/kailas-cloud/hybridqa/internal/domain/document"
)

// DocumentStore persists document rows.
type DocumentStore interface {
	Create(ctx context.Context, doc document.Document) (int64, error)
}

// ChunkStore persists chunk vectors.
type ChunkStore interface {
	Ensure(ctx context.Context) error
	InsertChunks(ctx context.Context, chunks []document.Chunk) error
}

// Embedder vectorizes chunk texts in one call.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
