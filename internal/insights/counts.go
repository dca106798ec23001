package insights

import (
	"math"
	"sort"

	"review_absa/internal/domain"
)

// pos orders tokens by record index, then by token index within the clause.
type pos struct {
	rec, tok int
}

func (p pos) before(o pos) bool {
	if p.rec != o.rec {
		return p.rec < o.rec
	}
	return p.tok < o.tok
}

type keyword struct {
	count int
	first pos
}

type labelTally struct {
	positive, negative, neutral int
}

func (l labelTally) total() int { return l.positive + l.negative + l.neutral }

// Counts is a partial reduction over a slice of corpus records.
// Merging is associative and commutative, so partitions may be combined in any order.
type Counts struct {
	labels      map[string]*labelTally
	highRated   map[string]struct{}
	mismatched  map[string]struct{}
	negHigh     map[string]int
	negAspects  map[string]struct{}
	keywords    map[string]map[string]*keyword
	topKeywords int
}

func newCounts(topN int) *Counts {
	return &Counts{
		labels:      map[string]*labelTally{},
		highRated:   map[string]struct{}{},
		mismatched:  map[string]struct{}{},
		negHigh:     map[string]int{},
		negAspects:  map[string]struct{}{},
		keywords:    map[string]map[string]*keyword{},
		topKeywords: topN,
	}
}

// Merge folds o into c.
func (c *Counts) Merge(o *Counts) {
	if o == nil {
		return
	}
	for aspect, t := range o.labels {
		dst := c.tally(aspect)
		dst.positive += t.positive
		dst.negative += t.negative
		dst.neutral += t.neutral
	}
	for id := range o.highRated {
		c.highRated[id] = struct{}{}
	}
	for id := range o.mismatched {
		c.mismatched[id] = struct{}{}
	}
	for aspect, n := range o.negHigh {
		c.negHigh[aspect] += n
	}
	for aspect := range o.negAspects {
		c.negAspects[aspect] = struct{}{}
	}
	for aspect, words := range o.keywords {
		for w, k := range words {
			c.addKeyword(aspect, w, k.count, k.first)
		}
	}
	if o.topKeywords > c.topKeywords {
		c.topKeywords = o.topKeywords
	}
}

func (c *Counts) tally(aspect string) *labelTally {
	t, ok := c.labels[aspect]
	if !ok {
		t = &labelTally{}
		c.labels[aspect] = t
	}
	return t
}

func (c *Counts) addKeyword(aspect, word string, n int, at pos) {
	words, ok := c.keywords[aspect]
	if !ok {
		words = map[string]*keyword{}
		c.keywords[aspect] = words
	}
	k, ok := words[word]
	if !ok {
		words[word] = &keyword{count: n, first: at}
		return
	}
	k.count += n
	if at.before(k.first) {
		k.first = at
	}
}

// Distribution reports per-aspect label percentages, sorted by aspect name.
func (c *Counts) Distribution() []domain.AspectDistribution {
	out := make([]domain.AspectDistribution, 0, len(c.labels))
	for aspect, t := range c.labels {
		total := t.total()
		if total == 0 {
			continue
		}
		out = append(out, domain.AspectDistribution{
			Aspect:   aspect,
			Positive: percent(t.positive, total),
			Negative: percent(t.negative, total),
			Neutral:  percent(t.neutral, total),
			Total:    total,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Aspect < out[j].Aspect })
	return out
}

// RatingMismatch reports how many high-rated reviews carry at least one negative verdict.
func (c *Counts) RatingMismatch() domain.RatingMismatch {
	rm := domain.RatingMismatch{
		HighRatedReviews:  len(c.highRated),
		MismatchedReviews: len(c.mismatched),
		TopAspects:        make([]domain.AspectCount, 0, len(c.negHigh)),
	}
	if rm.HighRatedReviews > 0 {
		rm.MismatchPercentage = percent(rm.MismatchedReviews, rm.HighRatedReviews)
	}
	for aspect, n := range c.negHigh {
		rm.TopAspects = append(rm.TopAspects, domain.AspectCount{Aspect: aspect, Count: n})
	}
	sort.Slice(rm.TopAspects, func(i, j int) bool {
		a, b := rm.TopAspects[i], rm.TopAspects[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Aspect < b.Aspect
	})
	return rm
}

// RootCauses ranks problem keywords per negatively judged aspect.
// Ties on count keep the word seen first in corpus order.
func (c *Counts) RootCauses() domain.RootCauses {
	out := make(domain.RootCauses, len(c.negAspects))
	for aspect := range c.negAspects {
		words := c.keywords[aspect]
		ranked := make([]rankedWord, 0, len(words))
		for w, k := range words {
			ranked = append(ranked, rankedWord{word: w, keyword: *k})
		}
		sort.Slice(ranked, func(i, j int) bool {
			a, b := ranked[i], ranked[j]
			if a.count != b.count {
				return a.count > b.count
			}
			return a.first.before(b.first)
		})
		if c.topKeywords > 0 && len(ranked) > c.topKeywords {
			ranked = ranked[:c.topKeywords]
		}
		list := make([]domain.KeywordCount, len(ranked))
		for i, r := range ranked {
			list[i] = domain.KeywordCount{Word: r.word, Count: r.count}
		}
		out[aspect] = list
	}
	return out
}

type rankedWord struct {
	word string
	keyword
}

func percent(n, total int) float64 {
	return math.Round(10000*float64(n)/float64(total)) / 100
}
