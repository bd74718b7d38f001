package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Krminfinity/hotel-recommender/internal/app"
	"github.com/Krminfinity/hotel-recommender/internal/domain"
)

const maxRequestBody = 1 << 16

type Handlers struct {
	S *app.Service

	// credential presence, reported by /healthz
	GoogleConfigured    bool
	RakutenConfigured   bool
	AffiliateConfigured bool
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.health)
	s.mux.Post("/v1/suggest", h.suggest)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "hotel-recommender",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": map[string]bool{
			"google_places_configured":     h.GoogleConfigured,
			"rakuten_app_configured":       h.RakutenConfigured,
			"rakuten_affiliate_configured": h.AffiliateConfigured,
		},
	})
}

func (h *Handlers) suggest(w http.ResponseWriter, r *http.Request) {
	var req domain.SuggestionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	out, err := h.S.Suggest(r.Context(), req)
	if err != nil {
		var (
			vErr *domain.ValidationError
			aErr *domain.AggregateError
		)
		switch {
		case errors.As(err, &vErr):
			writeProblem(w, http.StatusBadRequest, "Invalid request", vErr.Msg)
		// deadline first: an aggregate caused purely by the time budget
		// running out is a timeout, not a lookup miss
		case errors.Is(err, context.DeadlineExceeded):
			writeProblem(w, http.StatusGatewayTimeout, "Upstream timeout", "request exceeded the time budget")
		case errors.As(err, &aErr):
			writeProblem(w, http.StatusNotFound, "No stations found", aErr.Error())
		default:
			log.Error().Err(err).Msg("suggest failed")
			writeProblem(w, http.StatusBadGateway, "Upstream failure", "hotel providers are unavailable")
		}
		return
	}

	// an empty result list is a valid outcome, not an error
	writeJSON(w, http.StatusOK, out)
}
