// Package insights computes corpus-level reports over analyzed reviews.
package insights

import (
	"context"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"review_absa/internal/domain"
)

var tokenRe = regexp.MustCompile(`\b[a-z]{3,}\b`)

type Config struct {
	// HighRating is the minimum rating counted as high. It must be positive;
	// zero or less selects the default of 4.
	HighRating   float64
	TopKeywords  int
	ProblemWords []string
	Stopwords    []string
	// Partitions <= 0 uses GOMAXPROCS.
	Partitions int
}

func DefaultConfig() Config {
	return Config{
		HighRating:   4,
		TopKeywords:  10,
		ProblemWords: DefaultProblemWords,
		Stopwords:    DefaultStopwords,
	}
}

type Aggregator struct {
	highRating float64
	topN       int
	problem    map[string]struct{}
	stop       map[string]struct{}
	partitions int
}

func New(cfg Config) *Aggregator {
	def := DefaultConfig()
	if cfg.HighRating <= 0 {
		cfg.HighRating = def.HighRating
	}
	if cfg.TopKeywords <= 0 {
		cfg.TopKeywords = def.TopKeywords
	}
	if cfg.ProblemWords == nil {
		cfg.ProblemWords = def.ProblemWords
	}
	if cfg.Stopwords == nil {
		cfg.Stopwords = def.Stopwords
	}
	if cfg.Partitions <= 0 {
		cfg.Partitions = runtime.GOMAXPROCS(0)
	}
	return &Aggregator{
		highRating: cfg.HighRating,
		topN:       cfg.TopKeywords,
		problem:    toSet(cfg.ProblemWords),
		stop:       toSet(cfg.Stopwords),
		partitions: cfg.Partitions,
	}
}

// Report bundles the three corpus queries.
type Report struct {
	Distribution   []domain.AspectDistribution `json:"aspect_distribution"`
	RatingMismatch domain.RatingMismatch       `json:"rating_mismatch"`
	RootCauses     domain.RootCauses           `json:"root_causes"`
}

func (a *Aggregator) Report(ctx context.Context, recs []domain.CorpusRecord) (Report, error) {
	c, err := a.Reduce(ctx, recs)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Distribution:   c.Distribution(),
		RatingMismatch: c.RatingMismatch(),
		RootCauses:     c.RootCauses(),
	}, nil
}

func (a *Aggregator) Distribution(recs []domain.CorpusRecord) []domain.AspectDistribution {
	return a.count(recs, 0).Distribution()
}

func (a *Aggregator) RatingMismatch(recs []domain.CorpusRecord) domain.RatingMismatch {
	return a.count(recs, 0).RatingMismatch()
}

func (a *Aggregator) RootCauses(recs []domain.CorpusRecord) domain.RootCauses {
	return a.count(recs, 0).RootCauses()
}

// Reduce splits recs into contiguous partitions, counts them in parallel and merges the partials.
func (a *Aggregator) Reduce(ctx context.Context, recs []domain.CorpusRecord) (*Counts, error) {
	n := a.partitions
	if n > len(recs) {
		n = len(recs)
	}
	if n <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return a.count(recs, 0), nil
	}

	size := (len(recs) + n - 1) / n
	parts := make([]*Counts, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		lo := i * size
		hi := min(lo+size, len(recs))
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parts[i] = a.count(recs[lo:hi], lo)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newCounts(a.topN)
	for _, p := range parts {
		total.Merge(p)
	}
	return total, nil
}

// count reduces recs sequentially; offset is the index of recs[0] in the full corpus.
func (a *Aggregator) count(recs []domain.CorpusRecord, offset int) *Counts {
	c := newCounts(a.topN)
	for i, r := range recs {
		t := c.tally(r.Aspect)
		switch r.Sentiment {
		case domain.Positive:
			t.positive++
		case domain.Negative:
			t.negative++
		case domain.Neutral:
			t.neutral++
		}

		high := r.Rating != nil && *r.Rating >= a.highRating
		if high {
			c.highRated[r.ReviewID] = struct{}{}
		}
		if r.Sentiment != domain.Negative {
			continue
		}
		c.negAspects[r.Aspect] = struct{}{}
		if high {
			c.mismatched[r.ReviewID] = struct{}{}
			c.negHigh[r.Aspect]++
		}
		for j, w := range tokenRe.FindAllString(strings.ToLower(r.Clause), -1) {
			if _, skip := a.stop[w]; skip {
				continue
			}
			if _, ok := a.problem[w]; !ok {
				continue
			}
			c.addKeyword(r.Aspect, w, 1, pos{rec: offset + i, tok: j})
		}
	}
	return c
}

func toSet(words []string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return s
}
