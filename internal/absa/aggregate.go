package absa

import "review_absa/internal/domain"

// Aggregate reduces clause verdicts to one verdict per aspect. The highest
// confidence wins; on a tie the verdict seen first is kept.
func Aggregate(verdicts []domain.AspectSentiment) domain.AggregatedResult {
	out := make(domain.AggregatedResult, len(verdicts))
	for _, v := range verdicts {
		if cur, ok := out[v.Aspect]; ok && v.Confidence <= cur.Confidence {
			continue
		}
		out[v.Aspect] = v
	}
	return out
}
