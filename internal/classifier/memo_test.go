package classifier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"review_absa/internal/adapters/observability"
	"review_absa/internal/classifier"
	"review_absa/internal/domain"
)

type countingClassifier struct {
	calls int
	err   error
}

func (c *countingClassifier) Classify(ctx context.Context, text string) (domain.ClassificationResult, error) {
	c.calls++
	if c.err != nil {
		return domain.ClassificationResult{}, c.err
	}
	return domain.ClassificationResult{
		Label:        domain.Positive,
		Confidence:   0.8,
		Distribution: map[domain.Sentiment]float64{domain.Positive: 0.8, domain.Negative: 0.1, domain.Neutral: 0.1},
	}, nil
}

func TestMemo_CachesByText(t *testing.T) {
	inner := &countingClassifier{}
	m := classifier.NewMemo(inner, time.Minute, time.Minute)

	for i := 0; i < 3; i++ {
		res, err := m.Classify(context.Background(), "great camera")
		if err != nil {
			t.Fatal(err)
		}
		if res.Label != domain.Positive {
			t.Fatalf("unexpected result: %+v", res)
		}
		res.Distribution[domain.Positive] = -1 // callers must not corrupt the cache
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}
	res, _ := m.Classify(context.Background(), "great camera")
	if res.Distribution[domain.Positive] != 0.8 {
		t.Fatalf("cached distribution was mutated: %v", res.Distribution)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 cached item, got %d", m.Len())
	}
}

func TestMemo_DoesNotCacheErrors(t *testing.T) {
	inner := &countingClassifier{err: errors.New("boom")}
	m := classifier.NewMemo(inner, time.Minute, time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := m.Classify(context.Background(), "x"); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Fatalf("errors must not be cached, got %d calls", inner.calls)
	}
}

func TestInstrumented_CountsLabels(t *testing.T) {
	c := classifier.Instrument(&countingClassifier{}, "unit")
	before := testutil.ToFloat64(observability.Classifications.WithLabelValues("unit", "positive"))
	if _, err := c.Classify(context.Background(), "anything"); err != nil {
		t.Fatal(err)
	}
	after := testutil.ToFloat64(observability.Classifications.WithLabelValues("unit", "positive"))
	if after-before != 1 {
		t.Fatalf("expected counter +1, got %v -> %v", before, after)
	}

	failing := classifier.Instrument(&countingClassifier{err: errors.New("x")}, "unit")
	_, _ = failing.Classify(context.Background(), "anything")
	if got := testutil.ToFloat64(observability.Classifications.WithLabelValues("unit", "error")); got < 1 {
		t.Fatalf("expected error label to be counted, got %v", got)
	}
}
