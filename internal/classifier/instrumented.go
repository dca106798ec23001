package classifier

import (
	"context"
	"time"

	"review_absa/internal/adapters/observability"
	"review_absa/internal/domain"
)

// Instrumented records latency and label counts for the wrapped backend.
type Instrumented struct {
	next    domain.Classifier
	backend string
}

func Instrument(next domain.Classifier, backend string) *Instrumented {
	return &Instrumented{next: next, backend: backend}
}

func (i *Instrumented) Classify(ctx context.Context, text string) (domain.ClassificationResult, error) {
	start := time.Now()
	res, err := i.next.Classify(ctx, text)
	label := string(res.Label)
	if err != nil {
		label = "error"
	}
	observability.ObserveClassification(i.backend, label, time.Since(start))
	return res, err
}
