// Package modelserver is a Classifier backed by a remote sentiment model over HTTP.
package modelserver

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"review_absa/internal/adapters/observability"
	"review_absa/internal/domain"
)

const service = "modelserver"

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("%w: model server URL is required", domain.ErrClassifierUnavailable)
	}
	if rps <= 0 {
		rps = 50
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 5 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}

var (
	ErrUnauthorized = errors.New("modelserver: unauthorized")
	ErrBadResponse  = errors.New("modelserver: bad response")
)

// Classify posts one clause to /classify.
func (c *Client) Classify(ctx context.Context, text string) (domain.ClassificationResult, error) {
	var out classifyResponse
	if err := c.do(ctx, http.MethodPost, "/classify", classifyRequest{Text: text}, &out); err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("%w: %w", domain.ErrClassifierUnavailable, err)
	}
	res, err := out.toResult()
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("%w: %w", domain.ErrClassifierUnavailable, err)
	}
	return res, nil
}

// Ping checks the server's health endpoint; used at startup.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (r classifyResponse) toResult() (domain.ClassificationResult, error) {
	label, err := domain.ParseSentiment(r.Label)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	dist := make(map[domain.Sentiment]float64, len(r.Probabilities))
	for k, p := range r.Probabilities {
		s, err := domain.ParseSentiment(k)
		if err != nil {
			return domain.ClassificationResult{}, fmt.Errorf("%w: %w", ErrBadResponse, err)
		}
		dist[s] = p
	}
	conf := r.Confidence
	if conf == 0 {
		conf = dist[label]
	}
	if conf < 0 || conf > 1 {
		return domain.ClassificationResult{}, fmt.Errorf("%w: confidence %v", ErrBadResponse, conf)
	}
	return domain.ClassificationResult{Label: label, Confidence: conf, Distribution: dist}, nil
}

// do sends a JSON request with client-side rate limiting and retries, decoding into out when non-nil.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = b
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		if c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "review-absa/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, path, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(service, path, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			defer resp.Body.Close()
			if out == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("%w: %w", ErrBadResponse, err)
			}
			return nil

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff is 50ms doubling per attempt plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 50 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
