package mysql

// Note: `text` is reserved; keep it quoted everywhere.
const upsertReviewSQL = "INSERT INTO reviews\n  (id, `text`, rating, source)\nVALUES\n  (?, ?, ?, ?)\n" +
	"ON DUPLICATE KEY UPDATE\n" +
	"  `text`      = VALUES(`text`),\n" +
	"  rating      = COALESCE(VALUES(rating), reviews.rating),\n" +
	"  source      = COALESCE(VALUES(source), reviews.source),\n" +
	"  analyzed_at = CURRENT_TIMESTAMP\n"

// Re-analysis replaces the previous verdicts wholesale.
const deleteAspectsSQL = `DELETE FROM review_aspects WHERE review_id = ?`

const insertAspectsPrefix = "INSERT INTO review_aspects\n  (review_id, aspect, sentiment, confidence, clause)\nVALUES "

const clearFailureSQL = `DELETE FROM analysis_failures WHERE review_id = ?`

const insertFailureSQL = `
INSERT INTO analysis_failures (review_id, reason)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE
  reason   = VALUES(reason),
  attempts = attempts + 1,
  seen_at  = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Corpus order is ingestion order, then aspect name; root-cause tie-breaks depend on it.
const listCorpusSQL = `
SELECT a.review_id, a.aspect, a.sentiment, a.confidence, a.clause, r.rating
FROM review_aspects a
JOIN reviews r ON r.id = a.review_id
ORDER BY r.seq, a.aspect
`

const reviewExistsSQL = `SELECT 1 FROM reviews WHERE id = ?`

const getAnalysisSQL = `
SELECT a.review_id, a.aspect, a.sentiment, a.confidence, a.clause, r.rating
FROM review_aspects a
JOIN reviews r ON r.id = a.review_id
WHERE a.review_id = ?
ORDER BY a.aspect
`
