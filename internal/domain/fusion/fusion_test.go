package fusion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/hybridqa/internal/domain/hit"
	"github.com/kailas-cloud/hybridqa/internal/domain/intent"
)

type row struct {
	id    int64
	title string
}

func (r row) RecordID() int64 { return r.id }

type mockLoader struct {
	rows    []row
	err     error
	calls   int
	gotIDs  []int64
	gotFilt []intent.Predicate
}

func (m *mockLoader) FindByIDs(_ context.Context, ids []int64, filters []intent.Predicate) ([]row, error) {
	m.calls++
	m.gotIDs = ids
	m.gotFilt = filters
	if m.err != nil {
		return nil, m.err
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []row
	for _, r := range m.rows {
		if want[r.id] {
			out = append(out, r)
		}
	}
	return out, nil
}

func ids(results []Result[row]) []int64 {
	out := make([]int64, len(results))
	for i, r := range results {
		out[i] = r.Record.id
	}
	return out
}

func TestFuse_ReordersToHitOrder(t *testing.T) {
	// loader returns rows in an unrelated order
	loader := &mockLoader{rows: []row{{id: 1}, {id: 2}, {id: 3}}}
	hits := []hit.Hit{hit.New(3, 0.9), hit.New(1, 0.8), hit.New(2, 0.7)}

	got, err := Fuse(context.Background(), hits, nil, Options{Threshold: DefaultThreshold}, loader)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids(got))
	assert.InDelta(t, 0.9, got[0].Score, 1e-9)
}

func TestFuse_ThresholdAndLoaderSkipped(t *testing.T) {
	loader := &mockLoader{rows: []row{{id: 1}}}
	hits := []hit.Hit{hit.New(1, 0.1), hit.New(2, 0.24)}

	got, err := Fuse(context.Background(), hits, nil, Options{Threshold: DefaultThreshold, Cap: 6}, loader)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Equal(t, 0, loader.calls)
}

func TestFuse_ThresholdIsInclusive(t *testing.T) {
	loader := &mockLoader{rows: []row{{id: 7}}}
	hits := []hit.Hit{hit.New(7, 0.25)}

	got, err := Fuse(context.Background(), hits, nil, Options{Threshold: 0.25}, loader)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids(got))
}

func TestFuse_MissingRowsAbsent(t *testing.T) {
	// row 2 filtered out relationally
	loader := &mockLoader{rows: []row{{id: 1}, {id: 3}}}
	hits := []hit.Hit{hit.New(1, 0.9), hit.New(2, 0.8), hit.New(3, 0.7)}
	filters := []intent.Predicate{mustLess(t, "calories", 300)}

	got, err := Fuse(context.Background(), hits, filters, Options{Threshold: 0.25}, loader)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(got))
	assert.Equal(t, filters, loader.gotFilt)
	assert.Equal(t, []int64{1, 2, 3}, loader.gotIDs)
}

func TestFuse_TruncatesToCap(t *testing.T) {
	var rows []row
	var hits []hit.Hit
	for i := int64(1); i <= 10; i++ {
		rows = append(rows, row{id: i})
		hits = append(hits, hit.New(i, 1-float64(i)/100))
	}
	loader := &mockLoader{rows: rows}

	got, err := Fuse(context.Background(), hits, nil, Options{Threshold: 0.25, Cap: 6}, loader)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids(got))
}

func TestFuse_DuplicateHitsEmittedOnce(t *testing.T) {
	loader := &mockLoader{rows: []row{{id: 1}, {id: 2}}}
	hits := []hit.Hit{hit.New(1, 0.9), hit.New(2, 0.8), hit.New(1, 0.5)}

	got, err := Fuse(context.Background(), hits, nil, Options{Threshold: 0.25}, loader)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(got))
	assert.Equal(t, []int64{1, 2}, loader.gotIDs)
	assert.InDelta(t, 0.9, got[0].Score, 1e-9)
}

func TestFuse_EqualScoresKeepNativeOrder(t *testing.T) {
	loader := &mockLoader{rows: []row{{id: 5}, {id: 4}, {id: 6}}}
	hits := []hit.Hit{hit.New(4, 0.5), hit.New(6, 0.5), hit.New(5, 0.5)}

	got, err := Fuse(context.Background(), hits, nil, Options{Threshold: 0.25}, loader)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 6, 5}, ids(got))
}

func TestFuse_LoaderError(t *testing.T) {
	loaderErr := errors.New("connection reset")
	loader := &mockLoader{err: loaderErr}

	_, err := Fuse(context.Background(), []hit.Hit{hit.New(1, 0.9)}, nil, Options{Threshold: 0.25}, loader)
	assert.ErrorIs(t, err, loaderErr)
}

func TestAboveThreshold(t *testing.T) {
	hits := []hit.Hit{hit.New(1, 0.9), hit.New(2, 0.1), hit.New(3, 0.3)}
	got := AboveThreshold(hits, 0.25)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID())
	assert.Equal(t, int64(3), got[1].ID())
}

func mustLess(t *testing.T, field string, bound float64) intent.Predicate {
	t.Helper()
	p, err := intent.NewLessThan(field, bound)
	require.NoError(t, err)
	return p
}
