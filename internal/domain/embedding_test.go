package domain

import (
	"context"
	"errors"
	"math"
	"testing"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.calls++
	if s.err != nil {
		return EmbeddingResult{}, s.err
	}
	return EmbeddingResult{Embedding: s.vectors[text], PromptTokens: 2, TotalTokens: 3}, nil
}

func TestBatchFallback_AggregatesUsage(t *testing.T) {
	inner := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
	}}

	res, err := BatchFallback(context.Background(), inner, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 calls, got %d", inner.calls)
	}
	if len(res.Embeddings) != 2 || res.Embeddings[1][1] != 1 {
		t.Errorf("unexpected embeddings: %v", res.Embeddings)
	}
	if res.PromptTokens != 4 || res.TotalTokens != 6 {
		t.Errorf("unexpected usage: prompt=%d total=%d", res.PromptTokens, res.TotalTokens)
	}
}

func TestBatchFallback_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &stubEmbedder{err: innerErr}

	_, err := BatchFallback(context.Background(), inner, []string{"a"})
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestNormalize_UnitLength(t *testing.T) {
	got := Normalize([]float32{3, 4})
	if math.Abs(float64(got[0])-0.6) > 1e-6 || math.Abs(float64(got[1])-0.8) > 1e-6 {
		t.Errorf("expected [0.6 0.8], got %v", got)
	}

	var sum float64
	for _, x := range got {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("expected unit norm, got %f", sum)
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	in := []float32{0, 0, 0}
	got := Normalize(in)
	for _, x := range got {
		if x != 0 {
			t.Fatalf("expected zero vector, got %v", got)
		}
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := []float32{2, 0}
	_ = Normalize(in)
	if in[0] != 2 {
		t.Errorf("input mutated: %v", in)
	}
}

func TestCheckDimensions(t *testing.T) {
	if err := CheckDimensions(make([]float32, 384), 384); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := CheckDimensions(make([]float32, 3), 384)
	if !errors.Is(err, ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}
}
