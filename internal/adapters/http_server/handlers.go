package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"review_absa/internal/app"
	"review_absa/internal/domain"
)

const maxBody = 1 << 20

type Handlers struct {
	A *app.AnalysisService
	Q *app.InsightsService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Group(func(r chi.Router) {
		r.Use(chimw.AllowContentType("application/json"))
		r.Post("/v1/absa", h.analyze)
		r.Post("/v1/sentiment", h.sentiment)
		r.Post("/v1/reviews", h.ingest)
	})
	s.mux.Get("/v1/reviews/{id}", h.getReview)

	s.mux.Get("/v1/insights/aspect-distribution", h.aspectDistribution)
	s.mux.Get("/v1/insights/rating-mismatch", h.ratingMismatch)
	s.mux.Get("/v1/insights/root-causes", h.rootCauses)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidReview):
		writeProblem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrClassifierUnavailable):
		writeProblem(w, http.StatusServiceUnavailable, "Classifier Unavailable", err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeProblem(w, http.StatusGatewayTimeout, "Timeout", err.Error())
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// decode reads a bounded JSON body into dst.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached serves v with a weak ETag, answering 304 on a match.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

type absaRequest struct {
	Review *string `json:"review"`
}

func (h *Handlers) analyze(w http.ResponseWriter, r *http.Request) {
	var req absaRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Review == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", `"review" is required`)
		return
	}
	out, err := h.A.Analyze(r.Context(), *req.Review)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type sentimentRequest struct {
	Sentence string `json:"sentence"`
}

func (h *Handlers) sentiment(w http.ResponseWriter, r *http.Request) {
	var req sentimentRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.A.ClassifySentence(r.Context(), req.Sentence)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type ingestRequest struct {
	ID     string   `json:"id"`
	Review string   `json:"review"`
	Rating *float64 `json:"rating"`
	Source *string  `json:"source"`
}

func (h *Handlers) ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.A.Ingest(r.Context(), domain.Review{ID: req.ID, Text: req.Review, Rating: req.Rating, Source: req.Source})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/reviews/"+out.ID)
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	out, err := h.Q.Review(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) aspectDistribution(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.AspectDistribution(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) ratingMismatch(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.RatingMismatch(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) rootCauses(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.RootCauses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}
