package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"review_absa/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// SaveAnalysis upserts the review and replaces its aspect verdicts in one transaction.
func (r *Repo) SaveAnalysis(ctx context.Context, rv domain.Review, recs []domain.CorpusRecord) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, upsertReviewSQL, rv.ID, rv.Text, valF64(rv.Rating), valStr(rv.Source)); err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}
	if _, err = tx.ExecContext(ctx, deleteAspectsSQL, rv.ID); err != nil {
		return fmt.Errorf("delete aspects: %w", err)
	}
	if len(recs) > 0 {
		values := make([]string, 0, len(recs))
		args := make([]any, 0, len(recs)*5) // 5 params per row
		for _, rec := range recs {
			values = append(values, "(?,?,?,?,?)")
			args = append(args, rv.ID, rec.Aspect, string(rec.Sentiment), rec.Confidence, rec.Clause)
		}
		if _, err = tx.ExecContext(ctx, insertAspectsPrefix+strings.Join(values, ","), args...); err != nil {
			return fmt.Errorf("insert aspects: %w", err)
		}
	}
	if _, err = tx.ExecContext(ctx, clearFailureSQL, rv.ID); err != nil {
		return fmt.Errorf("clear failure: %w", err)
	}
	return tx.Commit()
}

func (r *Repo) LogFailure(ctx context.Context, reviewID, reason string) error {
	_, err := r.db.ExecContext(ctx, insertFailureSQL, reviewID, reason)
	return err
}

func (r *Repo) ListCorpusRecords(ctx context.Context) ([]domain.CorpusRecord, error) {
	rows, err := r.db.QueryContext(ctx, listCorpusSQL)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (r *Repo) GetAnalysis(ctx context.Context, reviewID string) ([]domain.CorpusRecord, error) {
	var one int
	if err := r.db.QueryRowContext(ctx, reviewExistsSQL, reviewID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, getAnalysisSQL, reviewID)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]domain.CorpusRecord, error) {
	defer rows.Close()
	out := []domain.CorpusRecord{}
	for rows.Next() {
		var rec domain.CorpusRecord
		var sentiment string
		var rating sql.NullFloat64
		if err := rows.Scan(&rec.ReviewID, &rec.Aspect, &sentiment, &rec.Confidence, &rec.Clause, &rating); err != nil {
			return nil, err
		}
		s, err := domain.ParseSentiment(sentiment)
		if err != nil {
			return nil, err
		}
		rec.Sentiment = s
		if rating.Valid {
			v := rating.Float64
			rec.Rating = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
