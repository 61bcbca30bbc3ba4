package intent

// Class tags a rule for conflict resolution.
type Class int

// Rule classes. Only calorie rules carry a class in the default table.
const (
	ClassNone Class = iota
	ClassExplicitHigh
	ClassExplicitLow
	ClassQualitativeHeavy
	ClassQualitativeLight
)

// Rule maps trigger phrases to a predicate. Triggers are tried in order and
// only the first one present in the query counts.
type Rule struct {
	Triggers  []string
	Predicate Predicate
	Strip     bool
	Class     Class
}

// DefaultStopWords are connectors, politeness filler and generic nouns that carry
// no descriptive meaning for the vector search.
var DefaultStopWords = []string{
	"but", "and", "or", "for", "with", "that", "are", "is", "the", "a",
	"an", "of", "to", "in", "on", "at", "some", "me", "please", "give",
	"show", "want", "need", "find", "get", "recipe", "recipes", "dish",
	"dishes", "food", "foods", "meal", "meals", "something", "ideas",
}

// DefaultRules returns the recipe intent table: prep-time rules, then calorie
// rules, then category rules.
func DefaultRules() []Rule {
	rules := []Rule{
		{
			Triggers:  []string{"quick", "fast", "rapid", "instant", "speedy", "5 min", "10 min", "under 15"},
			Predicate: mustPredicate(NewLessThan("prep_time", 15)),
			Strip:     true,
		},
		{
			Triggers:  []string{"slow", "slow cook", "long cook"},
			Predicate: mustPredicate(NewGreaterThan("prep_time", 30)),
			Strip:     true,
		},
		{
			Triggers:  []string{"high calorie", "high-calorie", "high cal"},
			Predicate: mustPredicate(NewGreaterThan("calories", 500)),
			Strip:     true,
			Class:     ClassExplicitHigh,
		},
		{
			Triggers:  []string{"low calorie", "low-calorie", "low cal"},
			Predicate: mustPredicate(NewLessThan("calories", 300)),
			Strip:     true,
			Class:     ClassExplicitLow,
		},
		{
			Triggers:  []string{"filling", "hearty", "substantial", "heavy"},
			Predicate: mustPredicate(NewGreaterThan("calories", 400)),
			Strip:     true,
			Class:     ClassQualitativeHeavy,
		},
		{
			Triggers:  []string{"light", "low quantity", "small portion", "small", "not too much", "not a lot"},
			Predicate: mustPredicate(NewLessThan("calories", 350)),
			Strip:     true,
			Class:     ClassQualitativeLight,
		},
	}

	categories := []struct {
		tag      string
		triggers []string
	}{
		{"snack", []string{"snack", "snacks"}},
		{"breakfast", []string{"breakfast"}},
		{"dinner", []string{"dinner"}},
		{"italian", []string{"italian"}},
		{"indian", []string{"indian"}},
		{"comfort", []string{"comfort food", "comfort"}},
		{"japanese", []string{"japanese"}},
		{"asian", []string{"asian"}},
		{"salad", []string{"salad"}},
	}
	for _, c := range categories {
		rules = append(rules, Rule{
			Triggers:  c.triggers,
			Predicate: mustPredicate(NewContains("category", c.tag)),
			Strip:     true,
		})
	}
	return rules
}
