package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"review_absa/internal/adapters/observability"
	"review_absa/internal/domain"
)

// Pipeline is the per-review core the service drives.
type Pipeline interface {
	Analyze(ctx context.Context, text string) (domain.AggregatedResult, error)
	ClassifySentence(ctx context.Context, sentence string) (domain.ClassificationResult, error)
}

type AnalysisService struct {
	pipeline Pipeline
	repo     domain.CorpusRepository
	cache    domain.Cache
}

// NewAnalysisService wires the pipeline; repo and cache may be nil for analyze-only use.
func NewAnalysisService(p Pipeline, r domain.CorpusRepository, cache domain.Cache) *AnalysisService {
	return &AnalysisService{pipeline: p, repo: r, cache: cache}
}

func (s *AnalysisService) Analyze(ctx context.Context, text string) (AnalysisView, error) {
	res, err := s.analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	return MapAnalysis(res), nil
}

func (s *AnalysisService) ClassifySentence(ctx context.Context, sentence string) (SentimentView, error) {
	sentence = strings.TrimSpace(sentence)
	res, err := s.pipeline.ClassifySentence(ctx, sentence)
	if err != nil {
		return SentimentView{}, err
	}
	return mapSentiment(sentence, res), nil
}

// Ingest analyzes a review, persists one corpus record per detected aspect and
// evicts cached insights. Classifier failures are logged against the review id
// and returned; nothing is persisted for a failed analysis.
func (s *AnalysisService) Ingest(ctx context.Context, rv domain.Review) (IngestView, error) {
	if s.repo == nil {
		return IngestView{}, errors.New("ingest: no repository configured")
	}
	rv.ID = strings.TrimSpace(rv.ID)
	if strings.TrimSpace(rv.Text) == "" {
		return IngestView{}, fmt.Errorf("%w: empty review text", domain.ErrInvalidReview)
	}
	if err := validRating(rv.Rating); err != nil {
		return IngestView{}, err
	}
	if rv.ID == "" {
		rv.ID = syntheticID(rv.Text, rv.Rating)
	}

	res, err := s.analyze(ctx, rv.Text)
	if err != nil {
		if ferr := s.repo.LogFailure(ctx, rv.ID, err.Error()); ferr != nil {
			log.Error().Err(ferr).Str("review_id", rv.ID).Msg("log failure")
		}
		return IngestView{}, err
	}

	recs := res.Records(rv)
	if err := s.repo.SaveAnalysis(ctx, rv, recs); err != nil {
		return IngestView{}, fmt.Errorf("save analysis for %s: %w", rv.ID, err)
	}
	s.invalidateInsights(ctx)
	return IngestView{ID: rv.ID, Aspects: MapAnalysis(res), Analyzed: len(recs)}, nil
}

// IngestRaw maps a loosely shaped row (JSONL object or CSV record) and ingests it.
func (s *AnalysisService) IngestRaw(ctx context.Context, raw map[string]any) (IngestView, error) {
	rv, err := MapReview(raw)
	if err != nil {
		return IngestView{}, err
	}
	return s.Ingest(ctx, rv)
}

// ratings are on a 0-5 scale; a missing rating is allowed
func validRating(r *float64) error {
	if r == nil {
		return nil
	}
	if math.IsNaN(*r) || *r < domain.MinRating || *r > domain.MaxRating {
		return fmt.Errorf("%w: rating %v outside [%v, %v]", domain.ErrInvalidReview, *r, domain.MinRating, domain.MaxRating)
	}
	return nil
}

func (s *AnalysisService) analyze(ctx context.Context, text string) (domain.AggregatedResult, error) {
	res, err := s.pipeline.Analyze(ctx, text)
	switch {
	case err != nil:
		observability.ObserveReview("error")
		return nil, err
	case len(res) == 0:
		observability.ObserveReview("empty")
	default:
		observability.ObserveReview("ok")
	}
	for aspect, v := range res {
		observability.ObserveVerdict(aspect, string(v.Sentiment))
	}
	return res, nil
}

// invalidateInsights moves the corpus version, then drops the entries of the
// version it replaced. It runs after the corpus write has committed.
func (s *AnalysisService) invalidateInsights(ctx context.Context) {
	if s.cache == nil {
		return
	}
	prev := corpusVersion(ctx, s.cache)
	if err := s.cache.Set(ctx, keyVersion, newVersion(), 0); err != nil {
		log.Warn().Err(err).Msg("insights version bump failed")
	}
	for _, k := range insightKeys {
		if err := s.cache.Del(ctx, versioned(k, prev)); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("cache invalidation failed")
		}
	}
}
