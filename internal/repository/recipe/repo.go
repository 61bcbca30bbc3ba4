package recipe

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/kailas-cloud/hybridqa/internal/db"
	"github.com/kailas-cloud/hybridqa/internal/domain/intent"
	domrecipe "github.com/kailas-cloud/hybridqa/internal/domain/recipe"
)

// Repo reads and seeds the recipe catalogue in postgres.
type Repo struct {
	db *gorm.DB
}

// New creates a recipe repository.
func New(gdb *gorm.DB) *Repo {
	return &Repo{db: gdb}
}

// FindByIDs returns recipes with id in ids that satisfy every filter.
// Row order is unspecified; callers reorder by hit rank.
func (r *Repo) FindByIDs(ctx context.Context, ids []int64, filters []intent.Predicate) ([]domrecipe.Recipe, error) {
	if len(ids) == 0 {
		return []domrecipe.Recipe{}, nil
	}

	q := r.db.WithContext(ctx).Where("id IN ?", ids)
	for _, p := range filters {
		sql, arg := p.Clause()
		if tags, ok := arg.([]string); ok {
			arg = pq.StringArray(tags)
		}
		q = q.Where(sql, arg)
	}

	var rows []row
	if err := q.Find(&rows).Error; err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return toDomainList(rows), nil
}

// ListForSync returns every recipe ordered by id.
func (r *Repo) ListForSync(ctx context.Context) ([]domrecipe.Recipe, error) {
	var rows []row
	err := r.db.WithContext(ctx).
		Select("id", "description").
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return toDomainList(rows), nil
}

// Seed replaces the catalogue with recipes; ids restart from 1.
func (r *Repo) Seed(ctx context.Context, recipes []domrecipe.Recipe) (int, error) {
	rows := make([]row, len(recipes))
	for i, rec := range recipes {
		rows[i] = fromDomain(rec)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("TRUNCATE TABLE recipes RESTART IDENTITY").Error; err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, &db.Error{Op: db.OpInsert, Err: err}
	}
	return len(rows), nil
}

func toDomainList(rows []row) []domrecipe.Recipe {
	out := make([]domrecipe.Recipe, len(rows))
	for i, rw := range rows {
		out[i] = rw.toDomain()
	}
	return out
}
