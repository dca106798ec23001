package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"review_absa/internal/domain"
	"review_absa/internal/insights"
)

const (
	keyDistribution   = "insights:aspect-distribution"
	keyRatingMismatch = "insights:rating-mismatch"
	keyRootCauses     = "insights:root-causes"

	// keyVersion names the current corpus version. Insights are cached under
	// "<key>:<version>", and every corpus write moves the version, so a reader
	// that computed over the old corpus can only write an unreachable key.
	keyVersion = "insights:version"
)

var insightKeys = []string{keyDistribution, keyRatingMismatch, keyRootCauses}

// corpusVersion returns the current version, "0" before the first write.
func corpusVersion(ctx context.Context, c domain.Cache) string {
	var v string
	ok, err := c.Get(ctx, keyVersion, &v)
	if err != nil {
		log.Warn().Err(err).Msg("insights version read failed")
	}
	if !ok || v == "" {
		return "0"
	}
	return v
}

func versioned(key, version string) string { return key + ":" + version }

func newVersion() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

type InsightsService struct {
	repo     domain.CorpusRepository
	cache    domain.Cache
	agg      *insights.Aggregator
	cacheTTL time.Duration
}

func NewInsightsService(r domain.CorpusRepository, c domain.Cache, agg *insights.Aggregator, ttl time.Duration) *InsightsService {
	return &InsightsService{repo: r, cache: c, agg: agg, cacheTTL: ttl}
}

func (s *InsightsService) AspectDistribution(ctx context.Context) ([]domain.AspectDistribution, error) {
	var out []domain.AspectDistribution
	key := versioned(keyDistribution, corpusVersion(ctx, s.cache))
	if s.cached(ctx, key, &out) {
		return out, nil
	}
	c, err := s.reduce(ctx)
	if err != nil {
		return nil, err
	}
	out = c.Distribution()
	s.store(ctx, key, out)
	return copyDistribution(out), nil
}

func (s *InsightsService) RatingMismatch(ctx context.Context) (domain.RatingMismatch, error) {
	var out domain.RatingMismatch
	key := versioned(keyRatingMismatch, corpusVersion(ctx, s.cache))
	if s.cached(ctx, key, &out) {
		return out, nil
	}
	c, err := s.reduce(ctx)
	if err != nil {
		return domain.RatingMismatch{}, err
	}
	out = c.RatingMismatch()
	s.store(ctx, key, out)
	cp := out
	cp.TopAspects = append([]domain.AspectCount(nil), out.TopAspects...)
	return cp, nil
}

func (s *InsightsService) RootCauses(ctx context.Context) (domain.RootCauses, error) {
	var out domain.RootCauses
	key := versioned(keyRootCauses, corpusVersion(ctx, s.cache))
	if s.cached(ctx, key, &out) {
		return out, nil
	}
	c, err := s.reduce(ctx)
	if err != nil {
		return nil, err
	}
	out = c.RootCauses()
	s.store(ctx, key, out)
	return copyRootCauses(out), nil
}

// Review returns the stored verdicts of one ingested review. Not cached.
func (s *InsightsService) Review(ctx context.Context, id string) (AnalysisView, error) {
	recs, err := s.repo.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapRecords(recs), nil
}

func (s *InsightsService) reduce(ctx context.Context) (*insights.Counts, error) {
	recs, err := s.repo.ListCorpusRecords(ctx)
	if err != nil {
		return nil, err
	}
	return s.agg.Reduce(ctx, recs)
}

// cached reports a usable hit. Read or decode failures fall through to a
// recompute; they are never served as zero values.
func (s *InsightsService) cached(ctx context.Context, key string, dst any) bool {
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("insights cache read failed")
		return false
	}
	return ok
}

func (s *InsightsService) store(ctx context.Context, key string, v any) {
	// optional size guard
	if b, _ := json.Marshal(v); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
	}
}

// copies keep callers from mutating values held by an in-process cache
func copyDistribution(in []domain.AspectDistribution) []domain.AspectDistribution {
	out := make([]domain.AspectDistribution, len(in))
	copy(out, in)
	return out
}

func copyRootCauses(in domain.RootCauses) domain.RootCauses {
	out := make(domain.RootCauses, len(in))
	for k, v := range in {
		out[k] = append([]domain.KeywordCount{}, v...)
	}
	return out
}
