package classifier

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"review_absa/internal/adapters/observability"
	"review_absa/internal/domain"
)

// Memo caches verdicts by exact clause text. Only valid for deterministic
// classifiers; errors are never cached.
type Memo struct {
	next  domain.Classifier
	cache *gocache.Cache
}

func NewMemo(next domain.Classifier, ttl, cleanup time.Duration) *Memo {
	return &Memo{next: next, cache: gocache.New(ttl, cleanup)}
}

func (m *Memo) Classify(ctx context.Context, text string) (domain.ClassificationResult, error) {
	if v, ok := m.cache.Get(text); ok {
		observability.ObserveCache("classifier", "hit")
		return clone(v.(domain.ClassificationResult)), nil
	}
	observability.ObserveCache("classifier", "miss")
	res, err := m.next.Classify(ctx, text)
	if err != nil {
		return res, err
	}
	m.cache.SetDefault(text, clone(res))
	observability.ObserveCache("classifier", "set")
	return res, nil
}

func (m *Memo) Len() int { return m.cache.ItemCount() }

func clone(r domain.ClassificationResult) domain.ClassificationResult {
	if r.Distribution != nil {
		d := make(map[domain.Sentiment]float64, len(r.Distribution))
		for k, v := range r.Distribution {
			d[k] = v
		}
		r.Distribution = d
	}
	return r
}
