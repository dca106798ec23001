package absa_test

import (
	"testing"

	"review_absa/internal/absa"
	"review_absa/internal/domain"
)

func TestAggregate_MaxConfidenceWins(t *testing.T) {
	got := absa.Aggregate([]domain.AspectSentiment{
		{Aspect: "battery", Sentiment: domain.Negative, Confidence: 0.6, Clause: "a"},
		{Aspect: "battery", Sentiment: domain.Negative, Confidence: 0.9, Clause: "b"},
	})
	v, ok := got["battery"]
	if len(got) != 1 || !ok {
		t.Fatalf("unexpected result: %+v", got)
	}
	if v.Sentiment != domain.Negative || v.Confidence != 0.9 || v.Clause != "b" {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestAggregate_TieKeepsFirst(t *testing.T) {
	got := absa.Aggregate([]domain.AspectSentiment{
		{Aspect: "price", Sentiment: domain.Positive, Confidence: 0.7, Clause: "first"},
		{Aspect: "camera", Sentiment: domain.Neutral, Confidence: 0.5, Clause: "cam"},
		{Aspect: "price", Sentiment: domain.Negative, Confidence: 0.7, Clause: "second"},
	})
	if got["price"].Clause != "first" || got["price"].Sentiment != domain.Positive {
		t.Fatalf("tie not broken by first-encountered: %+v", got["price"])
	}
	if got["camera"].Clause != "cam" {
		t.Fatalf("unexpected camera verdict: %+v", got["camera"])
	}
}

func TestAggregate_Empty(t *testing.T) {
	if got := absa.Aggregate(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}
