package modelserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"review_absa/internal/adapters/modelserver"
	"review_absa/internal/domain"
)

func TestClient_Classify_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/classify" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var in struct{ Text string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Text != "terrible battery" {
			t.Errorf("unexpected body %+v", in)
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			w.WriteHeader(503)
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"label":         "negative",
				"confidence":    0.91,
				"probabilities": map[string]float64{"negative": 0.91, "neutral": 0.05, "positive": 0.04},
			})
		}
	}))
	defer ts.Close()

	cl, err := modelserver.New(ts.URL, "k", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := cl.Classify(ctx, "terrible battery")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Label != domain.Negative || got.Confidence != 0.91 || len(got.Distribution) != 3 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Classify_BadLabel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"label":"mixed","confidence":0.5}`))
	}))
	defer ts.Close()

	cl, _ := modelserver.New(ts.URL, "", 100)
	_, err := cl.Classify(context.Background(), "x")
	if !errors.Is(err, domain.ErrClassifierUnavailable) || !errors.Is(err, modelserver.ErrBadResponse) {
		t.Fatalf("expected bad response, got %v", err)
	}
}

func TestClient_Classify_ConfidenceFromDistribution(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"label":"positive","probabilities":{"positive":0.7,"negative":0.2,"neutral":0.1}}`))
	}))
	defer ts.Close()

	cl, _ := modelserver.New(ts.URL, "", 100)
	got, err := cl.Classify(context.Background(), "x")
	if err != nil || got.Confidence != 0.7 {
		t.Fatalf("unexpected result %+v, %v", got, err)
	}
}

func TestClient_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	cl, _ := modelserver.New(ts.URL, "wrong", 100)
	if err := cl.Ping(context.Background()); !errors.Is(err, modelserver.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	cl, _ = modelserver.New(ts.URL, "secret", 100)
	if err := cl.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestClient_ContextCanceledDuringRetry(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	cl, _ := modelserver.New(ts.URL, "", 100)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := cl.Classify(ctx, "x")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := modelserver.New("", "", 1); !errors.Is(err, domain.ErrClassifierUnavailable) {
		t.Fatalf("expected ErrClassifierUnavailable, got %v", err)
	}
}
