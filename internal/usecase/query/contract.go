package query

import (
	"context"

	"github.com/kailas-cloud/hybridqa/internal/domain/hit"
)

// Retriever returns nearest document chunks for a question.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]hit.Hit, error)
}

// AnswerGenerator produces an answer grounded in a context.
type AnswerGenerator interface {
	Generate(ctx context.Context, query, contextText string) (string, error)
}
