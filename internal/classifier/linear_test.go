package classifier_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"review_absa/internal/classifier"
	"review_absa/internal/domain"
)

func tinyModel() classifier.Model {
	return classifier.Model{
		Classes:    []string{"negative", "neutral", "positive"},
		Vocabulary: map[string]int{"great": 0, "terrible": 1, "not good": 2, "good": 3},
		IDF:        []float64{1, 1, 1, 1},
		Coef: [][]float64{
			{-2, 2, 3, -1},
			{0, 0, 0, 0},
			{2, -2, -3, 1},
		},
		Intercept:  []float64{0, 0, 0},
		NGramRange: [2]int{1, 2},
	}
}

func mustLinear(t *testing.T, m classifier.Model) *classifier.Linear {
	t.Helper()
	l, err := classifier.NewLinear(m)
	if err != nil {
		t.Fatalf("NewLinear: %v", err)
	}
	return l
}

func TestLinear_Labels(t *testing.T) {
	l := mustLinear(t, tinyModel())
	cases := map[string]domain.Sentiment{
		"Great camera":                   domain.Positive,
		"terrible battery":               domain.Negative,
		"not good at all":  domain.Negative, // bigram outweighs "good"
		"GOOD screen":      domain.Positive,
	}
	for in, want := range cases {
		res, err := l.Classify(context.Background(), in)
		if err != nil {
			t.Fatalf("Classify(%q): %v", in, err)
		}
		if res.Label != want {
			t.Errorf("Classify(%q) = %s, want %s", in, res.Label, want)
		}
	}
}

func TestLinear_ProbabilitiesAndConfidence(t *testing.T) {
	l := mustLinear(t, tinyModel())
	res, err := l.Classify(context.Background(), "Great camera")
	if err != nil {
		t.Fatal(err)
	}
	var sum, max float64
	for _, p := range res.Distribution {
		sum += p
		if p > max {
			max = p
		}
	}
	if len(res.Distribution) != 3 {
		t.Fatalf("expected 3 classes, got %v", res.Distribution)
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("probabilities sum to %v", sum)
	}
	if res.Confidence != max {
		t.Fatalf("confidence %v != max prob %v", res.Confidence, max)
	}
	// e^2 / (e^-2 + 1 + e^2)
	want := math.Exp(2) / (math.Exp(-2) + 1 + math.Exp(2))
	if math.Abs(res.Confidence-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", res.Confidence, want)
	}
}

func TestLinear_UnknownTextTieBreaksOnFirstClass(t *testing.T) {
	l := mustLinear(t, tinyModel())
	res, err := l.Classify(context.Background(), "zzz qqq")
	if err != nil {
		t.Fatal(err)
	}
	if res.Label != domain.Negative || math.Abs(res.Confidence-1.0/3) > 1e-9 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestLinear_SublinearTF(t *testing.T) {
	m := tinyModel()
	m.SublinearTF = true
	l := mustLinear(t, m)
	a, _ := l.Classify(context.Background(), "great")
	b, _ := l.Classify(context.Background(), "great great great")
	// single feature: L2 normalization makes both vectors identical
	if math.Abs(a.Confidence-b.Confidence) > 1e-12 {
		t.Fatalf("expected equal confidence, got %v vs %v", a.Confidence, b.Confidence)
	}
}

func TestNewLinear_Invalid(t *testing.T) {
	cases := map[string]func(m *classifier.Model){
		"two classes":     func(m *classifier.Model) { m.Classes = m.Classes[:2] },
		"unknown class":   func(m *classifier.Model) { m.Classes[1] = "mixed" },
		"duplicate class": func(m *classifier.Model) { m.Classes[2] = "negative" },
		"coef columns":    func(m *classifier.Model) { m.Coef[0] = m.Coef[0][:2] },
		"vocab range":     func(m *classifier.Model) { m.Vocabulary["oops"] = 9 },
		"intercept":       func(m *classifier.Model) { m.Intercept = nil },
		"ngram":           func(m *classifier.Model) { m.NGramRange = [2]int{2, 1} },
		"empty idf":       func(m *classifier.Model) { m.IDF = nil },
	}
	for name, mutate := range cases {
		m := tinyModel()
		mutate(&m)
		if _, err := classifier.NewLinear(m); !errors.Is(err, domain.ErrClassifierUnavailable) {
			t.Errorf("%s: expected ErrClassifierUnavailable, got %v", name, err)
		}
	}
}

func TestLoad_MalformedArtifact(t *testing.T) {
	if _, err := classifier.Load(strings.NewReader("{not json")); !errors.Is(err, domain.ErrClassifierUnavailable) {
		t.Fatalf("expected ErrClassifierUnavailable, got %v", err)
	}
	if _, err := classifier.LoadFile("does/not/exist.json"); !errors.Is(err, domain.ErrClassifierUnavailable) {
		t.Fatalf("expected ErrClassifierUnavailable, got %v", err)
	}
}

func TestLoadFile_SampleArtifact(t *testing.T) {
	l, err := classifier.LoadFile("../../artifacts/sentiment_model.json")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	for in, want := range map[string]domain.Sentiment{
		"Great camera":                  domain.Positive,
		"terrible battery":              domain.Negative,
		"the battery drains too quickly": domain.Negative,
		"the price is okay":              domain.Neutral,
	} {
		res, err := l.Classify(context.Background(), in)
		if err != nil {
			t.Fatal(err)
		}
		if res.Label != want {
			t.Errorf("Classify(%q) = %s (%.3f), want %s", in, res.Label, res.Confidence, want)
		}
	}
}
