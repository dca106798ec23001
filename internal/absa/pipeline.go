// Package absa is the per-review aspect sentiment pipeline:
// sentences -> clauses -> aspect match -> classify -> aggregate.
package absa

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"review_absa/internal/domain"
)

// Pipeline is safe for concurrent use as long as its classifier is.
type Pipeline struct {
	matcher    *Matcher
	classifier domain.Classifier
}

func New(lex domain.AspectLexicon, c domain.Classifier) (*Pipeline, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil classifier", domain.ErrClassifierUnavailable)
	}
	if lex.Len() == 0 {
		return nil, fmt.Errorf("%w: empty lexicon", domain.ErrInvalidLexicon)
	}
	return &Pipeline{matcher: NewMatcher(lex), classifier: c}, nil
}

// ClauseTrace is the intermediate state for one clause.
type ClauseTrace struct {
	Sentence string
	Text     string
	Aspects  []string
	Result   *domain.ClassificationResult // nil when no aspect matched
}

type Trace struct {
	Sentences []string
	Clauses   []ClauseTrace
	Result    domain.AggregatedResult
}

// Analyze returns one verdict per mentioned aspect. Blank text yields an
// empty result and no error.
func (p *Pipeline) Analyze(ctx context.Context, text string) (domain.AggregatedResult, error) {
	tr, err := p.Trace(ctx, text)
	if err != nil {
		return nil, err
	}
	return tr.Result, nil
}

// Trace runs the pipeline and keeps every intermediate stage.
func (p *Pipeline) Trace(ctx context.Context, text string) (Trace, error) {
	var (
		tr       Trace
		verdicts []domain.AspectSentiment
	)
	tr.Sentences = SplitSentences(text)
	for _, s := range tr.Sentences {
		for _, c := range SplitClauses(s) {
			ct := ClauseTrace{Sentence: s, Text: c, Aspects: p.matcher.Match(c)}
			if len(ct.Aspects) > 0 {
				res, err := p.classify(ctx, c)
				if err != nil {
					return Trace{}, err
				}
				ct.Result = &res
				for _, a := range ct.Aspects {
					verdicts = append(verdicts, domain.AspectSentiment{
						Aspect:     a,
						Sentiment:  res.Label,
						Confidence: res.Confidence,
						Clause:     c,
					})
				}
			}
			tr.Clauses = append(tr.Clauses, ct)
		}
	}
	tr.Result = Aggregate(verdicts)
	return tr, nil
}

// ClassifySentence classifies a single sentence as a whole, without aspect
// detection.
func (p *Pipeline) ClassifySentence(ctx context.Context, sentence string) (domain.ClassificationResult, error) {
	s := strings.TrimSpace(sentence)
	if s == "" {
		return domain.ClassificationResult{}, fmt.Errorf("%w: empty sentence", domain.ErrInvalidReview)
	}
	return p.classify(ctx, s)
}

func (p *Pipeline) classify(ctx context.Context, clause string) (domain.ClassificationResult, error) {
	res, err := p.classifier.Classify(ctx, clause)
	if err != nil {
		if errors.Is(err, domain.ErrClassifierUnavailable) {
			return domain.ClassificationResult{}, fmt.Errorf("clause %q: %w", clause, err)
		}
		return domain.ClassificationResult{}, fmt.Errorf("%w: clause %q: %w", domain.ErrClassifierUnavailable, clause, err)
	}
	if err := validate(res); err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("%w: clause %q: %v", domain.ErrClassifierUnavailable, clause, err)
	}
	return res, nil
}

func validate(res domain.ClassificationResult) error {
	switch res.Label {
	case domain.Positive, domain.Negative, domain.Neutral:
	default:
		return fmt.Errorf("unknown label %q", res.Label)
	}
	if math.IsNaN(res.Confidence) || res.Confidence < 0 || res.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range", res.Confidence)
	}
	return nil
}
