package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(Components{
		Postgres:  &mockPinger{},
		Milvus:    &mockPinger{},
		Cache:     &mockPinger{},
		Embedding: &mockEmbeddingChecker{},
	})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{ComponentPostgres, ComponentMilvus, ComponentCache, ComponentEmbedding} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
	if len(r.Failed()) != 0 {
		t.Errorf("expected no failures, got %v", r.Failed())
	}
}

func TestCheck_PostgresError(t *testing.T) {
	svc := New(Components{
		Postgres:  &mockPinger{err: errors.New("conn refused")},
		Milvus:    &mockPinger{},
		Embedding: &mockEmbeddingChecker{},
	})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentPostgres] != CheckError {
		t.Errorf("expected postgres %q, got %q", CheckError, r.Checks[ComponentPostgres])
	}
	if r.Checks[ComponentMilvus] != CheckOK {
		t.Errorf("expected milvus %q, got %q", CheckOK, r.Checks[ComponentMilvus])
	}
}

func TestCheck_EmbeddingNotReady(t *testing.T) {
	svc := New(Components{
		Postgres:  &mockPinger{},
		Milvus:    &mockPinger{err: errors.New("timeout")},
		Embedding: &mockEmbeddingChecker{err: errors.New("warming up")},
	})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	failed := r.Failed()
	if len(failed) != 2 || failed[0] != ComponentEmbedding || failed[1] != ComponentMilvus {
		t.Errorf("unexpected failures %v", failed)
	}
}

func TestCheck_OptionalComponentsSkipped(t *testing.T) {
	svc := New(Components{Postgres: &mockPinger{}})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[ComponentCache]; ok {
		t.Error("cache should not be reported when not configured")
	}
	if _, ok := r.Checks[ComponentEmbedding]; ok {
		t.Error("embedding should not be reported when not configured")
	}
}
