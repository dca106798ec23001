// Package corpus streams review rows from JSONL or CSV files.
package corpus

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"review_absa/internal/domain"
)

type Format int

const (
	JSONL Format = iota
	CSV
)

// FormatFromPath picks CSV for .csv files and JSONL otherwise.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return CSV
	}
	return JSONL
}

var ErrMalformedRow = errors.New("malformed corpus row")

// Each calls fn for every row of r. line is 1-based (the CSV header is line 1).
// Returning an error from fn stops the scan.
func Each(r io.Reader, f Format, fn func(line int, row map[string]any) error) error {
	if f == CSV {
		return eachCSV(r, fn)
	}
	return eachJSONL(r, fn)
}

// EachFile opens path and streams it with the format implied by its extension.
func EachFile(path string, fn func(line int, row map[string]any) error) error {
	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	return Each(fh, FormatFromPath(path), fn)
}

func eachJSONL(r io.Reader, fn func(int, map[string]any) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var row map[string]any
		if err := json.Unmarshal(b, &row); err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
		}
		if err := fn(line, row); err != nil {
			return err
		}
	}
	return sc.Err()
}

func eachCSV(r io.Reader, fn func(int, map[string]any) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: header: %w", ErrMalformedRow, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)
		row := make(map[string]any, len(header))
		for i, h := range header {
			if i < len(rec) && h != "" {
				row[h] = rec[i]
			}
		}
		if err := fn(line, row); err != nil {
			return err
		}
	}
}

var recordAliases = map[string][]string{
	"review_id":  {"review_id", "reviewId", "id", "e"},
	"aspect":     {"aspect"},
	"sentiment":  {"sentiment", "label"},
	"confidence": {"confidence", "score"},
	"clause":     {"sentence", "clause"},
	"rating":     {"rating", "Rating"},
}

func first(row map[string]any, key string) (any, bool) {
	for _, k := range recordAliases[key] {
		if v, ok := row[k]; ok && v != nil && v != "" {
			return v, true
		}
	}
	return nil, false
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func asFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(t, ",", ".")), 64)
	}
	return 0, fmt.Errorf("not a number: %v", v)
}

// ToRecord maps one labeled row (review id, aspect, sentiment, sentence, rating) onto a CorpusRecord.
func ToRecord(row map[string]any) (domain.CorpusRecord, error) {
	var rec domain.CorpusRecord
	id, ok := first(row, "review_id")
	if !ok {
		return rec, fmt.Errorf("%w: missing review id", ErrMalformedRow)
	}
	rec.ReviewID = asString(id)

	aspect, ok := first(row, "aspect")
	if !ok {
		return rec, fmt.Errorf("%w: missing aspect", ErrMalformedRow)
	}
	rec.Aspect = strings.ToLower(asString(aspect))

	label, ok := first(row, "sentiment")
	if !ok {
		return rec, fmt.Errorf("%w: missing sentiment", ErrMalformedRow)
	}
	s, err := domain.ParseSentiment(asString(label))
	if err != nil {
		return rec, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}
	rec.Sentiment = s

	if v, ok := first(row, "confidence"); ok {
		if rec.Confidence, err = asFloat(v); err != nil {
			return rec, fmt.Errorf("%w: confidence: %w", ErrMalformedRow, err)
		}
	}
	if v, ok := first(row, "clause"); ok {
		rec.Clause = asString(v)
	}
	if v, ok := first(row, "rating"); ok {
		f, err := asFloat(v)
		if err != nil {
			return rec, fmt.Errorf("%w: rating: %w", ErrMalformedRow, err)
		}
		rec.Rating = &f
	}
	return rec, nil
}

// ReadRecords loads a whole labeled corpus file.
func ReadRecords(path string) ([]domain.CorpusRecord, error) {
	var out []domain.CorpusRecord
	err := EachFile(path, func(line int, row map[string]any) error {
		rec, err := ToRecord(row)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}
