package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/hybridqa/internal/domain/recipe"
)

//go:embed recipes.yaml
var sampleRecipes []byte

type fixture struct {
	Recipes []struct {
		Title       string   `yaml:"title"`
		Calories    int      `yaml:"calories"`
		PrepTime    int      `yaml:"prep_time"`
		Category    []string `yaml:"category"`
		Description string   `yaml:"description"`
		Ingredients string   `yaml:"ingredients"`
	} `yaml:"recipes"`
}

// SampleRecipes returns the built-in sample catalogue.
func SampleRecipes() ([]recipe.Recipe, error) {
	return LoadRecipes(strings.NewReader(string(sampleRecipes)))
}

// LoadRecipes decodes a recipes YAML document. Every recipe needs a title and
// a description; the description is what gets embedded.
func LoadRecipes(r io.Reader) ([]recipe.Recipe, error) {
	var f fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode recipes: %w", err)
	}

	out := make([]recipe.Recipe, 0, len(f.Recipes))
	for i, rc := range f.Recipes {
		if strings.TrimSpace(rc.Title) == "" || strings.TrimSpace(rc.Description) == "" {
			return nil, fmt.Errorf("recipe %d: title and description are required", i)
		}
		out = append(out, recipe.Recipe{
			Title:       rc.Title,
			Calories:    rc.Calories,
			PrepTime:    rc.PrepTime,
			Category:    rc.Category,
			Description: rc.Description,
			Ingredients: rc.Ingredients,
		})
	}
	return out, nil
}
