package app_test

import (
	"context"
	"encoding/json"
	"sync"

	"review_absa/internal/domain"
)

// ---- fakes ----

type fakePipeline struct {
	res domain.AggregatedResult
	err error
}

func (f *fakePipeline) Analyze(ctx context.Context, text string) (domain.AggregatedResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func (f *fakePipeline) ClassifySentence(ctx context.Context, sentence string) (domain.ClassificationResult, error) {
	if f.err != nil {
		return domain.ClassificationResult{}, f.err
	}
	return domain.ClassificationResult{Label: domain.Positive, Confidence: 0.87654}, nil
}

type fakeRepo struct {
	mu       sync.Mutex
	reviews  map[string]domain.Review
	recs     []domain.CorpusRecord
	failures map[string]string
	lists    int
	// afterList runs once the snapshot is taken, before it is returned
	afterList func()
}

func (f *fakeRepo) SaveAnalysis(ctx context.Context, rv domain.Review, recs []domain.CorpusRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reviews == nil {
		f.reviews = map[string]domain.Review{}
	}
	f.reviews[rv.ID] = rv
	f.recs = append(f.recs, recs...)
	return nil
}

func (f *fakeRepo) LogFailure(ctx context.Context, reviewID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures == nil {
		f.failures = map[string]string{}
	}
	f.failures[reviewID] = reason
	return nil
}

func (f *fakeRepo) ListCorpusRecords(ctx context.Context) ([]domain.CorpusRecord, error) {
	f.mu.Lock()
	f.lists++
	snap := append([]domain.CorpusRecord(nil), f.recs...)
	hook := f.afterList
	f.afterList = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return snap, nil
}

func (f *fakeRepo) GetAnalysis(ctx context.Context, reviewID string) ([]domain.CorpusRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[reviewID]; !ok {
		return nil, domain.ErrNotFound
	}
	var out []domain.CorpusRecord
	for _, r := range f.recs {
		if r.ReviewID == reviewID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeCache round-trips through JSON like the Redis adapter does.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

func pfloat(f float64) *float64 { return &f }
