package domain

import (
	"encoding/json"
	"fmt"
)

// Read models for corpus-level insights.

type AspectDistribution struct {
	Aspect   string  `json:"aspect"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Total    int     `json:"total"`
}

type AspectCount struct {
	Aspect string `json:"aspect"`
	Count  int    `json:"count"`
}

type RatingMismatch struct {
	MismatchPercentage float64       `json:"mismatch_percentage"`
	HighRatedReviews   int           `json:"high_rated_reviews"`
	MismatchedReviews  int           `json:"mismatched_reviews"`
	TopAspects         []AspectCount `json:"top_aspects"`
}

// KeywordCount serializes as a ["word", count] pair.
type KeywordCount struct {
	Word  string
	Count int
}

func (k KeywordCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{k.Word, k.Count})
}

func (k *KeywordCount) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("keyword count: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &k.Word); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &k.Count)
}

// RootCauses maps aspect -> ranked problem keywords.
type RootCauses map[string][]KeywordCount
