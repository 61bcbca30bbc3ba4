package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridqa/internal/domain"
	"github.com/kailas-cloud/hybridqa/internal/domain/recipe"
)

// --- Mocks ---

type mockRecipes struct {
	list    []recipe.Recipe
	seeded  []recipe.Recipe
	seedErr error
}

func (m *mockRecipes) ListForSync(_ context.Context) ([]recipe.Recipe, error) { return m.list, nil }

func (m *mockRecipes) Seed(_ context.Context, rs []recipe.Recipe) (int, error) {
	if m.seedErr != nil {
		return 0, m.seedErr
	}
	m.seeded = rs
	return len(rs), nil
}

type mockVectors struct {
	ensured bool
	ids     []int64
	calls   int
}

func (m *mockVectors) Ensure(_ context.Context) error {
	m.ensured = true
	return nil
}

func (m *mockVectors) UpsertVectors(_ context.Context, ids []int64, vecs [][]float32) error {
	if len(ids) != len(vecs) {
		return errors.New("length mismatch")
	}
	m.calls++
	m.ids = append(m.ids, ids...)
	return nil
}

type mockEmbedder struct {
	texts []string
	err   error
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	m.texts = append(m.texts, texts...)
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

// --- Tests ---

func TestSampleRecipes(t *testing.T) {
	rs, err := SampleRecipes()
	require.NoError(t, err)
	require.Len(t, rs, 12)

	assert.Equal(t, "Peanut Butter Banana Smoothie", rs[0].Title)
	assert.Equal(t, 550, rs[0].Calories)
	assert.Equal(t, []string{"snack", "breakfast"}, rs[0].Category)
	for _, r := range rs {
		assert.NotEmpty(t, r.Description, r.Title)
	}
}

func TestLoadRecipes_RejectsMissingDescription(t *testing.T) {
	_, err := LoadRecipes(strings.NewReader("recipes:\n  - title: Toast\n"))
	assert.Error(t, err)
}

func TestLoadRecipes_RejectsUnknownField(t *testing.T) {
	_, err := LoadRecipes(strings.NewReader("recipes:\n  - title: T\n    description: d\n    spicy: true\n"))
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	store := &mockRecipes{}
	n, err := New(store, nil, nil, zap.NewNop()).Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Len(t, store.seeded, 12)
}

func TestSeed_StoreError(t *testing.T) {
	store := &mockRecipes{seedErr: errors.New("permission denied")}
	_, err := New(store, nil, nil, zap.NewNop()).Seed(context.Background())
	assert.Error(t, err)
}

func TestSync_Batches(t *testing.T) {
	var list []recipe.Recipe
	for i := int64(1); i <= 5; i++ {
		list = append(list, recipe.Recipe{ID: i, Description: "d"})
	}
	vecs := &mockVectors{}
	emb := &mockEmbedder{}
	svc := New(&mockRecipes{list: list}, vecs, emb, zap.NewNop())
	svc.batch = 2

	n, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.True(t, vecs.ensured)
	assert.Equal(t, 3, vecs.calls)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, vecs.ids)
	assert.Len(t, emb.texts, 5)
}

func TestSync_EmbedError(t *testing.T) {
	list := []recipe.Recipe{{ID: 1, Description: "d"}}
	svc := New(&mockRecipes{list: list}, &mockVectors{}, &mockEmbedder{err: domain.ErrServiceNotReady}, zap.NewNop())

	n, err := svc.Sync(context.Background())
	assert.ErrorIs(t, err, domain.ErrServiceNotReady)
	assert.Zero(t, n)
}

func TestSync_RequiresVectorStore(t *testing.T) {
	_, err := New(&mockRecipes{}, nil, nil, zap.NewNop()).Sync(context.Background())
	assert.Error(t, err)
}
