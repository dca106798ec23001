package app

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"review_absa/internal/domain"
)

/********** response views **********/

type AspectView struct {
	Sentiment  domain.Sentiment `json:"sentiment"`
	Confidence float64          `json:"confidence"`
	Sentence   string           `json:"sentence"`
}

// AnalysisView maps aspect name -> verdict; aspects without evidence are absent.
type AnalysisView map[string]AspectView

type SentimentView struct {
	Sentence   string           `json:"sentence"`
	Sentiment  domain.Sentiment `json:"sentiment"`
	Confidence float64          `json:"confidence"`
}

type IngestView struct {
	ID       string       `json:"id"`
	Aspects  AnalysisView `json:"aspects"`
	Analyzed int          `json:"analyzed"`
}

// round3 is applied at the edge only; aggregation compares raw confidences.
func round3(f float64) float64 { return math.Round(f*1000) / 1000 }

// MapAnalysis renders a result with confidences rounded to 3 decimals.
func MapAnalysis(r domain.AggregatedResult) AnalysisView {
	out := make(AnalysisView, len(r))
	for aspect, v := range r {
		out[aspect] = AspectView{Sentiment: v.Sentiment, Confidence: round3(v.Confidence), Sentence: v.Clause}
	}
	return out
}

func mapRecords(recs []domain.CorpusRecord) AnalysisView {
	out := make(AnalysisView, len(recs))
	for _, r := range recs {
		out[r.Aspect] = AspectView{Sentiment: r.Sentiment, Confidence: round3(r.Confidence), Sentence: r.Clause}
	}
	return out
}

func mapSentiment(sentence string, r domain.ClassificationResult) SentimentView {
	return SentimentView{Sentence: sentence, Sentiment: r.Label, Confidence: round3(r.Confidence)}
}

/********** alias registry for raw review rows (JSONL/CSV) **********/

var reviewAliases = map[string][]string{
	"id":     {"id", "review_id", "reviewId", "e"},
	"text":   {"review", "text", "review_text", "Review", "content", "body", "comment"},
	"rating": {"rating", "Rating", "rate", "score", "stars", "rating.value"},
	"source": {"source", "platform", "site", "origin"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns a string (or a number rendered as string) at path, or "".
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return &s
		}
	}
	return nil
}

// getFloatFlexible: number from several paths (float64/int/string like "4,5").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

/********** raw review mapper **********/

// MapReview normalizes one raw row. A missing id is synthesized from a stable hash
// of text and rating so re-ingesting the same row upserts instead of duplicating.
func MapReview(raw map[string]any) (domain.Review, error) {
	var rv domain.Review
	if s := firstNonEmptyAlias(raw, reviewAliases, "text"); s != nil {
		rv.Text = *s
	}
	if rv.Text == "" {
		return domain.Review{}, fmt.Errorf("%w: no review text", domain.ErrInvalidReview)
	}
	rv.Rating = getFloatFlexible(raw, reviewAliases["rating"]...)
	rv.Source = firstNonEmptyAlias(raw, reviewAliases, "source")

	if s := firstNonEmptyAlias(raw, reviewAliases, "id"); s != nil {
		rv.ID = *s
	} else {
		rv.ID = syntheticID(rv.Text, rv.Rating)
	}
	return rv, nil
}

func syntheticID(text string, rating *float64) string {
	r := ""
	if rating != nil {
		r = fmt.Sprintf("%.3f", *rating)
	}
	sum := sha1.Sum([]byte(strings.Join([]string{strings.TrimSpace(text), r}, "|")))
	return hex.EncodeToString(sum[:])
}
