package intent

import (
	"regexp"
	"strings"
)

// minSemanticLen is the shortest stripped query still worth embedding.
const minSemanticLen = 3

var multiSpace = regexp.MustCompile(`\s{2,}`)

// Intent is the decomposition of a free-text query.
type Intent struct {
	SemanticQuery   string
	Filters         []Predicate
	MatchedKeywords []string
}

// SQLPreview renders the filters joined with AND, or "None".
func (i Intent) SQLPreview() string {
	if len(i.Filters) == 0 {
		return "None"
	}
	parts := make([]string, len(i.Filters))
	for k, f := range i.Filters {
		parts[k] = f.String()
	}
	return strings.Join(parts, " AND ")
}

// FilterStrings returns the literal form of every filter.
func (i Intent) FilterStrings() []string {
	out := make([]string, len(i.Filters))
	for k, f := range i.Filters {
		out[k] = f.String()
	}
	return out
}

type compiledTrigger struct {
	detect *regexp.Regexp
	strip  *regexp.Regexp
}

type compiledRule struct {
	rule     Rule
	triggers []compiledTrigger
}

// Extractor applies a rule table and a stop-word list to queries.
// It is immutable after construction and safe for concurrent use.
type Extractor struct {
	rules    []compiledRule
	stopWord *regexp.Regexp
}

// NewExtractor compiles rules and stop words. A trigger fires when it starts a
// word, so "10 min" fires on "10 minute" but "light" does not fire on
// "delightful". Stripping and stop words use whole-word matches only.
func NewExtractor(rules []Rule, stopWords []string) *Extractor {
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		res := make([]compiledTrigger, len(r.Triggers))
		for j, t := range r.Triggers {
			phrase := regexp.QuoteMeta(strings.ToLower(t))
			res[j] = compiledTrigger{
				detect: regexp.MustCompile(`\b` + phrase),
				strip:  regexp.MustCompile(`\b` + phrase + `\b`),
			}
		}
		compiled[i] = compiledRule{rule: r, triggers: res}
	}

	var stop *regexp.Regexp
	if len(stopWords) > 0 {
		quoted := make([]string, len(stopWords))
		for i, w := range stopWords {
			quoted[i] = regexp.QuoteMeta(strings.ToLower(w))
		}
		stop = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}

	return &Extractor{rules: compiled, stopWord: stop}
}

// NewDefaultExtractor uses DefaultRules and DefaultStopWords.
func NewDefaultExtractor() *Extractor {
	return NewExtractor(DefaultRules(), DefaultStopWords)
}

// Extract decomposes a non-blank query into a semantic remainder and filters.
func (e *Extractor) Extract(query string) Intent {
	lowered := strings.ToLower(query)
	semantic := lowered

	var (
		matched  []matchedRule
		keywords []string
	)

	for _, cr := range e.rules {
		for j, tr := range cr.triggers {
			if !tr.detect.MatchString(semantic) {
				continue
			}
			if !containsPredicate(matched, cr.rule.Predicate) {
				matched = append(matched, matchedRule{predicate: cr.rule.Predicate, class: cr.rule.Class})
			}
			keywords = append(keywords, strings.ToLower(cr.rule.Triggers[j]))
			if cr.rule.Strip {
				semantic = strings.TrimSpace(tr.strip.ReplaceAllString(semantic, " "))
			}
			break
		}
	}

	semantic = e.scrub(semantic)
	if len([]rune(semantic)) < minSemanticLen {
		semantic = e.scrub(lowered)
	}

	return Intent{
		SemanticQuery:   semantic,
		Filters:         resolve(matched),
		MatchedKeywords: keywords,
	}
}

func (e *Extractor) scrub(s string) string {
	if e.stopWord != nil {
		s = e.stopWord.ReplaceAllString(s, " ")
	}
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}

type matchedRule struct {
	predicate Predicate
	class     Class
}

func containsPredicate(list []matchedRule, p Predicate) bool {
	for _, m := range list {
		if m.predicate == p {
			return true
		}
	}
	return false
}

// resolve removes contradictory and redundant predicates, preserving order.
func resolve(matched []matchedRule) []Predicate {
	has := make(map[Class]bool, len(matched))
	for _, m := range matched {
		has[m.class] = true
	}

	drop := make(map[Class]bool)
	if has[ClassExplicitHigh] && has[ClassExplicitLow] {
		drop[ClassExplicitHigh] = true
		drop[ClassExplicitLow] = true
	}
	if has[ClassQualitativeHeavy] && has[ClassQualitativeLight] && !has[ClassExplicitHigh] {
		drop[ClassQualitativeHeavy] = true
	}

	kept := make([]Predicate, 0, len(matched))
	for _, m := range matched {
		if m.class != ClassNone && drop[m.class] {
			continue
		}
		kept = append(kept, m.predicate)
	}

	out := make([]Predicate, 0, len(kept))
	for i, p := range kept {
		weaker := false
		for j, q := range kept {
			if i != j && q.Stricter(p) {
				weaker = true
				break
			}
		}
		if !weaker {
			out = append(out, p)
		}
	}
	return out
}
