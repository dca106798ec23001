// Package bootstrap builds the read-only analysis core shared by every binary.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"review_absa/internal/absa"
	"review_absa/internal/adapters/modelserver"
	"review_absa/internal/classifier"
	"review_absa/internal/domain"
	"review_absa/internal/insights"
	"review_absa/internal/lexicon"
	"review_absa/internal/shared"
)

// Classifier loads the configured backend once. Any failure is a startup error;
// callers must not fall back to a default verdict.
func Classifier(ctx context.Context, cfg shared.Config) (domain.Classifier, error) {
	var (
		base domain.Classifier
		name = cfg.ClassifierBackend
	)
	switch name {
	case "", "linear":
		name = "linear"
		l, err := classifier.LoadFile(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		base = l
	case "remote":
		c, err := modelserver.New(cfg.ModelServerURL, cfg.ModelServerKey, cfg.ModelServerRPS)
		if err != nil {
			return nil, err
		}
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := c.Ping(pctx); err != nil {
			return nil, fmt.Errorf("%w: model server ping: %w", domain.ErrClassifierUnavailable, err)
		}
		base = c
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", domain.ErrClassifierUnavailable, name)
	}

	out := domain.Classifier(classifier.Instrument(base, name))
	if cfg.ClassifyCacheTTL > 0 {
		out = classifier.NewMemo(out, cfg.ClassifyCacheTTL, 2*cfg.ClassifyCacheTTL)
	}
	log.Info().Str("backend", name).Dur("memo_ttl", cfg.ClassifyCacheTTL).Msg("classifier ready")
	return out, nil
}

// Pipeline loads the lexicon and classifier and assembles the core.
func Pipeline(ctx context.Context, cfg shared.Config) (*absa.Pipeline, error) {
	lex, err := lexicon.LoadFile(cfg.LexiconPath)
	if err != nil {
		return nil, err
	}
	c, err := Classifier(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Strs("aspects", lex.Aspects()).Msg("lexicon loaded")
	return absa.New(lex, c)
}

func Insights(cfg shared.Config) *insights.Aggregator {
	ic := insights.DefaultConfig()
	ic.HighRating = cfg.HighRatingThreshold
	ic.TopKeywords = cfg.RootCauseTopN
	ic.Partitions = cfg.InsightsPartitions
	return insights.New(ic)
}
