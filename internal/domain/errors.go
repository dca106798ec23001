package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrInvalidLexicon is a configuration error raised at lexicon load time.
	ErrInvalidLexicon = errors.New("invalid aspect lexicon")

	// ErrClassifierUnavailable marks both a classifier that failed to load
	// and a classification that failed mid-flight. Callers must not
	// substitute a default verdict.
	ErrClassifierUnavailable = errors.New("sentiment classifier unavailable")

	ErrInvalidReview = errors.New("invalid review")
)
