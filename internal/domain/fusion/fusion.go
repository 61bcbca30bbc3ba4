package fusion

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/hybridqa/internal/domain/hit"
	"github.com/kailas-cloud/hybridqa/internal/domain/intent"
)

// DefaultThreshold is the minimum cosine similarity a hit needs to survive.
const DefaultThreshold = 0.25

// Record is a relational row addressable by a vector hit id.
type Record interface {
	RecordID() int64
}

// Loader fetches records whose id is in ids and that satisfy every filter.
// An empty filter list adds no restriction. Order of the returned rows is irrelevant.
type Loader[R Record] interface {
	FindByIDs(ctx context.Context, ids []int64, filters []intent.Predicate) ([]R, error)
}

// Result is a fused record with the similarity score of its hit.
type Result[R Record] struct {
	Record R
	Score  float64
}

// Options controls fusion. Cap <= 0 disables truncation.
type Options struct {
	Threshold float64
	Cap       int
}

// AboveThreshold keeps hits scoring at least threshold, preserving order.
func AboveThreshold(hits []hit.Hit, threshold float64) []hit.Hit {
	out := make([]hit.Hit, 0, len(hits))
	for _, h := range hits {
		if h.Score() >= threshold {
			out = append(out, h)
		}
	}
	return out
}

// Fuse joins vector hits with relational rows. The output follows hit order,
// rows excluded by filters are absent, and a duplicated hit id is emitted once.
// The loader is not called when no hit passes the threshold.
func Fuse[R Record](
	ctx context.Context,
	hits []hit.Hit,
	filters []intent.Predicate,
	opts Options,
	loader Loader[R],
) ([]Result[R], error) {
	surviving := AboveThreshold(hits, opts.Threshold)
	if len(surviving) == 0 {
		return []Result[R]{}, nil
	}

	ids := make([]int64, 0, len(surviving))
	scores := make(map[int64]float64, len(surviving))
	for _, h := range surviving {
		if _, seen := scores[h.ID()]; seen {
			continue
		}
		scores[h.ID()] = h.Score()
		ids = append(ids, h.ID())
	}

	rows, err := loader.FindByIDs(ctx, ids, filters)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	byID := make(map[int64]R, len(rows))
	for _, r := range rows {
		byID[r.RecordID()] = r
	}

	out := make([]Result[R], 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, Result[R]{Record: r, Score: scores[id]})
		if opts.Cap > 0 && len(out) == opts.Cap {
			break
		}
	}
	return out, nil
}
