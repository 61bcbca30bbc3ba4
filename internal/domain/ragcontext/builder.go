package ragcontext

import (
	"strings"
	"unicode/utf8"
)

// DefaultBudget is the context size in characters (roughly 1500 tokens).
const DefaultBudget = 6000

// Separator joins fragments.
const Separator = "\n\n"

// Build concatenates fragments in order until the next one would push the
// total length past budget. That fragment and everything after it is omitted whole.
// A first fragment larger than budget is still returned as the sole context.
func Build(fragments []string, budget int) string {
	var (
		b     strings.Builder
		total int
	)
	for i, f := range fragments {
		size := utf8.RuneCountInString(f)
		if i > 0 {
			size += utf8.RuneCountInString(Separator)
		}
		if i > 0 && total+size > budget {
			break
		}
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(f)
		total += size
	}
	return b.String()
}
