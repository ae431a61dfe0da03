// Package httpapi exposes the review service over HTTP for operators and
// for callers that cannot use NATS.
package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kindshare/moderation/internal/metrics"
	"github.com/kindshare/moderation/internal/review"
)

// HeaderRequestID carries the caller's correlation id.
const HeaderRequestID = "X-Request-ID"

type ctxKey struct{}

// Handler serves the moderation endpoints.
type Handler struct {
	service     *review.Service
	riskLimiter review.Limiter
}

// NewHandler creates a Handler backed by service.
func NewHandler(service *review.Service) *Handler {
	return &Handler{service: service}
}

// WithRiskLimiter throttles risk lookups per client address.
func (h *Handler) WithRiskLimiter(l review.Limiter) *Handler {
	h.riskLimiter = l
	return h
}

// NewRouter mounts the health, metrics and v1 API routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/moderate", h.moderate)
		r.Get("/donors/{donor_id}/risk", h.donorRisk)
	})
	return r
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
