// Package classifier holds the in-process sentiment model and decorators
// around domain.Classifier.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strings"

	"review_absa/internal/domain"
)

// Model is the exported form of a TF-IDF + multinomial logistic regression
// pipeline. Coef has one row per class, one column per vocabulary index.
type Model struct {
	Classes     []string       `json:"classes"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	Coef        [][]float64    `json:"coef"`
	Intercept   []float64      `json:"intercept"`
	NGramRange  [2]int         `json:"ngram_range"`
	SublinearTF bool           `json:"sublinear_tf"`
}

// Linear is immutable after construction and safe for concurrent use.
type Linear struct {
	classes []domain.Sentiment
	vocab   map[string]int
	idf     []float64
	coef    [][]float64
	bias    []float64
	minN    int
	maxN    int
	sublin  bool
}

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

func NewLinear(m Model) (*Linear, error) {
	if len(m.Classes) != 3 {
		return nil, unavailable("want 3 classes, got %d", len(m.Classes))
	}
	classes := make([]domain.Sentiment, len(m.Classes))
	seen := map[domain.Sentiment]bool{}
	for i, c := range m.Classes {
		s, err := domain.ParseSentiment(c)
		if err != nil {
			return nil, unavailable("class %d: %v", i, err)
		}
		if seen[s] {
			return nil, unavailable("duplicate class %q", s)
		}
		seen[s] = true
		classes[i] = s
	}
	nFeat := len(m.IDF)
	if nFeat == 0 {
		return nil, unavailable("empty idf vector")
	}
	if len(m.Coef) != len(classes) || len(m.Intercept) != len(classes) {
		return nil, unavailable("coef/intercept rows do not match classes")
	}
	for i, row := range m.Coef {
		if len(row) != nFeat {
			return nil, unavailable("coef row %d has %d columns, want %d", i, len(row), nFeat)
		}
	}
	for term, idx := range m.Vocabulary {
		if idx < 0 || idx >= nFeat {
			return nil, unavailable("term %q index %d out of range", term, idx)
		}
	}
	minN, maxN := m.NGramRange[0], m.NGramRange[1]
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 1
	}
	if minN < 1 || maxN < minN {
		return nil, unavailable("bad ngram range %v", m.NGramRange)
	}
	return &Linear{
		classes: classes,
		vocab:   m.Vocabulary,
		idf:     m.IDF,
		coef:    m.Coef,
		bias:    m.Intercept,
		minN:    minN,
		maxN:    maxN,
		sublin:  m.SublinearTF,
	}, nil
}

// Load decodes a JSON model artifact.
func Load(r io.Reader) (*Linear, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, unavailable("decode model: %v", err)
	}
	return NewLinear(m)
}

func LoadFile(path string) (*Linear, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, unavailable("open model: %v", err)
	}
	defer f.Close()
	return Load(f)
}

// Classify never fails once the model is loaded; ctx is unused because the
// computation does no I/O.
func (l *Linear) Classify(_ context.Context, text string) (domain.ClassificationResult, error) {
	x := l.vectorize(text)

	scores := make([]float64, len(l.classes))
	for k := range l.classes {
		s := l.bias[k]
		for j, v := range x {
			s += l.coef[k][j] * v
		}
		scores[k] = s
	}
	probs := softmax(scores)

	best := 0
	for k := 1; k < len(probs); k++ {
		if probs[k] > probs[best] {
			best = k
		}
	}
	dist := make(map[domain.Sentiment]float64, len(l.classes))
	for k, c := range l.classes {
		dist[c] = probs[k]
	}
	return domain.ClassificationResult{
		Label:        l.classes[best],
		Confidence:   probs[best],
		Distribution: dist,
	}, nil
}

// vectorize returns the sparse, L2-normalized tf-idf vector of text.
func (l *Linear) vectorize(text string) map[int]float64 {
	toks := tokenRe.FindAllString(strings.ToLower(text), -1)
	tf := map[int]float64{}
	for n := l.minN; n <= l.maxN; n++ {
		for i := 0; i+n <= len(toks); i++ {
			if idx, ok := l.vocab[strings.Join(toks[i:i+n], " ")]; ok {
				tf[idx]++
			}
		}
	}
	var norm float64
	for idx, c := range tf {
		if l.sublin {
			c = 1 + math.Log(c)
		}
		v := c * l.idf[idx]
		tf[idx] = v
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range tf {
			tf[idx] /= norm
		}
	}
	return tf
}

func softmax(z []float64) []float64 {
	m := z[0]
	for _, v := range z[1:] {
		if v > m {
			m = v
		}
	}
	out := make([]float64, len(z))
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - m)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrClassifierUnavailable, fmt.Sprintf(format, args...))
}
