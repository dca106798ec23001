package absa

import (
	"strings"

	"review_absa/internal/domain"
)

// Matcher detects lexicon aspects in a clause by case-insensitive substring
// match. It holds no mutable state.
type Matcher struct {
	lex domain.AspectLexicon
}

func NewMatcher(lex domain.AspectLexicon) *Matcher { return &Matcher{lex: lex} }

// Match returns every aspect with at least one phrase contained in clause,
// in lexicon order. A nil result means the clause carries no aspect.
func (m *Matcher) Match(clause string) []string {
	low := strings.ToLower(clause)
	var out []string
	m.lex.Each(func(aspect string, phrases []string) {
		for _, p := range phrases {
			if strings.Contains(low, p) {
				out = append(out, aspect)
				return
			}
		}
	})
	return out
}
