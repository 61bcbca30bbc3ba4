package recipe

import (
	"github.com/lib/pq"

	domrecipe "github.com/kailas-cloud/hybridqa/internal/domain/recipe"
)

// row is the gorm model of the recipes table.
type row struct {
	ID          int64          `gorm:"primaryKey;column:id"`
	Title       string         `gorm:"column:title"`
	Calories    int            `gorm:"column:calories"`
	PrepTime    int            `gorm:"column:prep_time"`
	Category    pq.StringArray `gorm:"column:category;type:text[]"`
	Description string         `gorm:"column:description"`
	Ingredients string         `gorm:"column:ingredients"`
}

func (row) TableName() string { return "recipes" }

func (r row) toDomain() domrecipe.Recipe {
	return domrecipe.Recipe{
		ID:          r.ID,
		Title:       r.Title,
		Calories:    r.Calories,
		PrepTime:    r.PrepTime,
		Category:    []string(r.Category),
		Description: r.Description,
		Ingredients: r.Ingredients,
	}
}

func fromDomain(r domrecipe.Recipe) row {
	return row{
		Title:       r.Title,
		Calories:    r.Calories,
		PrepTime:    r.PrepTime,
		Category:    pq.StringArray(r.Category),
		Description: r.Description,
		Ingredients: r.Ingredients,
	}
}
