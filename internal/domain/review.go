package domain

import (
	"fmt"
	"sort"
	"strings"
)

type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// Sentiments lists the three classes in a fixed order.
var Sentiments = []Sentiment{Positive, Negative, Neutral}

func ParseSentiment(s string) (Sentiment, error) {
	switch v := Sentiment(strings.ToLower(strings.TrimSpace(s))); v {
	case Positive, Negative, Neutral:
		return v, nil
	}
	return "", fmt.Errorf("unknown sentiment %q", s)
}

// Rating bounds on the 5-point scale.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

type Review struct {
	ID     string
	Text   string
	Rating *float64 // only consumed by insights
	Source *string
}

// ClassificationResult is one classifier verdict for a clause.
// Confidence is the max of Distribution.
type ClassificationResult struct {
	Label        Sentiment
	Confidence   float64
	Distribution map[Sentiment]float64
}

type AspectSentiment struct {
	Aspect     string
	Sentiment  Sentiment
	Confidence float64
	Clause     string // exact clause text that produced the verdict
}

// AggregatedResult holds at most one verdict per aspect. Aspects that were
// never mentioned are absent.
type AggregatedResult map[string]AspectSentiment

// CorpusRecord is one (review, aspect) row of an already analyzed corpus.
type CorpusRecord struct {
	ReviewID   string
	Aspect     string
	Sentiment  Sentiment
	Confidence float64
	Clause     string
	Rating     *float64
}

// Records flattens an aggregated result into corpus rows, ordered by aspect name.
func (r AggregatedResult) Records(rv Review) []CorpusRecord {
	out := make([]CorpusRecord, 0, len(r))
	for _, a := range r.Aspects() {
		v := r[a]
		out = append(out, CorpusRecord{
			ReviewID:   rv.ID,
			Aspect:     a,
			Sentiment:  v.Sentiment,
			Confidence: v.Confidence,
			Clause:     v.Clause,
			Rating:     rv.Rating,
		})
	}
	return out
}

// Aspects returns the aspect names in sorted order.
func (r AggregatedResult) Aspects() []string {
	out := make([]string, 0, len(r))
	for a := range r {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
