package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kindshare/moderation/internal/metrics"
	"github.com/kindshare/moderation/internal/ratelimit"
	"github.com/kindshare/moderation/internal/review"
)

const maxBodyBytes = 64 << 10

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFromContext(r.Context())

	var req review.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestID)
		return
	}
	if req.RequestID == "" {
		req.RequestID = requestID
	}

	res, err := h.service.Review(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, review.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), req.RequestID)
	case errors.Is(err, review.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", err.Error(), req.RequestID)
	default:
		// The verdict is valid even though it was not stored.
		writeJSON(w, http.StatusInternalServerError, res)
	}
}

func (h *Handler) donorRisk(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFromContext(r.Context())
	donorID := strings.TrimSpace(chi.URLParam(r, "donor_id"))
	if donorID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "donor_id is required", requestID)
		return
	}
	if h.riskLimiter != nil {
		ok, _ := h.riskLimiter.Allow(r.Context(), clientAddr(r), ratelimit.RuleRiskLookup)
		if !ok {
			metrics.RateLimitedTotal.Inc()
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many risk lookups", requestID)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.service.AssessRisk(r.Context(), donorID))
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg, requestID string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg, RequestID: requestID})
}
