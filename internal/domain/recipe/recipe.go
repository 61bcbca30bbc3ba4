package recipe

// Recipe is a row of the recipe catalogue.
type Recipe struct {
	ID          int64
	Title       string
	Calories    int
	PrepTime    int // minutes
	Category    []string
	Description string
	Ingredients string
}

// RecordID implements fusion.Record.
func (r Recipe) RecordID() int64 { return r.ID }
