package domain

import "context"

// Classifier turns one clause into a three-class sentiment verdict.
// Implementations are initialized once and must be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) (ClassificationResult, error)
}

type CorpusRepository interface {
	// Write paths
	SaveAnalysis(ctx context.Context, rv Review, recs []CorpusRecord) error
	LogFailure(ctx context.Context, reviewID string, reason string) error

	// Read paths
	ListCorpusRecords(ctx context.Context) ([]CorpusRecord, error)
	GetAnalysis(ctx context.Context, reviewID string) ([]CorpusRecord, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
