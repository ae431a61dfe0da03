// Package review runs a listing submission through the moderation engine
// the way the listing workflow needs it: throttled per donor, escalated to
// strict mode for risky donors, persisted, and observable.
package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kindshare/moderation/internal/listing"
	"github.com/kindshare/moderation/internal/metrics"
	"github.com/kindshare/moderation/internal/moderation"
	"github.com/kindshare/moderation/internal/ratelimit"
	"github.com/kindshare/moderation/internal/risk"
)

var (
	// ErrRateLimited is returned when the donor exceeded the moderation rate.
	ErrRateLimited = errors.New("review: rate limited")

	// ErrInvalidRequest is returned for requests without a donor.
	ErrInvalidRequest = errors.New("review: invalid request")
)

// Limiter throttles requests per identifier.
type Limiter interface {
	Allow(ctx context.Context, identifier string, rule ratelimit.Rule) (bool, error)
}

// Recorder persists a listing's moderation outcome.
type Recorder interface {
	RecordModeration(ctx context.Context, r listing.Record) error
}

// RiskAssessor classifies donors and forgets cached classifications.
type RiskAssessor interface {
	Assess(ctx context.Context, userID string) risk.Profile
	Invalidate(ctx context.Context, userID string)
}

// Dependencies wires a Service. Limiter and Recorder are optional.
type Dependencies struct {
	Moderator *moderation.Moderator
	Risk      RiskAssessor
	Recorder  Recorder
	Limiter   Limiter
	Rule      ratelimit.Rule
}

// Service reviews listing submissions.
type Service struct {
	moderator *moderation.Moderator
	risk      RiskAssessor
	recorder  Recorder
	limiter   Limiter
	rule      ratelimit.Rule
}

// NewService creates a Service. A zero Rule uses ratelimit.RuleModerate.
func NewService(deps Dependencies) *Service {
	rule := deps.Rule
	if rule.Key == "" {
		rule = ratelimit.RuleModerate
	}
	return &Service{
		moderator: deps.Moderator,
		risk:      deps.Risk,
		recorder:  deps.Recorder,
		limiter:   deps.Limiter,
		rule:      rule,
	}
}

// Review moderates one submission.
//
// The donor's risk is assessed before the new score is written, and a
// donor that requires extra moderation is reviewed in strict mode. When a
// ListingID is present the outcome is persisted and the donor's cached risk
// profile dropped. A persistence failure returns the full result together
// with the error.
func (s *Service) Review(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	defer func() { metrics.ModerationLatency.Observe(time.Since(start).Seconds()) }()

	req.DonorID = strings.TrimSpace(req.DonorID)
	if req.DonorID == "" {
		return Result{RequestID: req.RequestID}, fmt.Errorf("%w: donor_id is required", ErrInvalidRequest)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	if s.limiter != nil {
		// Errors are already logged by the limiter, which allows on failure.
		ok, _ := s.limiter.Allow(ctx, req.DonorID, s.rule)
		if !ok {
			metrics.RateLimitedTotal.Inc()
			log.Printf("[review] rate limited donor=%s request=%s", req.DonorID, req.RequestID)
			return Result{RequestID: req.RequestID, ListingID: req.ListingID, DonorID: req.DonorID}, ErrRateLimited
		}
	}

	profile := s.AssessRisk(ctx, req.DonorID)
	strict := req.StrictMode || profile.RequiresExtraModeration

	verdict := s.moderator.Moderate(req.Title, req.Description, moderation.Options{StrictMode: strict})
	observeVerdict(verdict)

	result := Result{
		RequestID:    req.RequestID,
		ListingID:    req.ListingID,
		DonorID:      req.DonorID,
		Verdict:      verdict,
		DisplayScore: verdict.DisplayScore(),
		Status:       listing.StatusFor(verdict),
		StrictMode:   strict,
		Risk:         profile,
	}

	log.Printf("[review] verdict request=%s listing=%s donor=%s outcome=%s score=%d issues=%d risk=%s strict=%v",
		req.RequestID, req.ListingID, req.DonorID, verdict.Outcome(), verdict.Score, len(verdict.Issues), profile.RiskLevel, strict)

	if s.recorder == nil || req.ListingID == "" {
		return result, nil
	}

	if err := s.recorder.RecordModeration(ctx, listing.RecordFromVerdict(req.ListingID, req.DonorID, verdict)); err != nil {
		metrics.PersistFailuresTotal.Inc()
		log.Printf("[review] persist listing=%s donor=%s: %v", req.ListingID, req.DonorID, err)
		result.Error = err.Error()
		return result, fmt.Errorf("review: persist verdict: %w", err)
	}
	s.risk.Invalidate(ctx, req.DonorID)

	return result, nil
}

// AssessRisk returns the donor's risk profile. It never fails.
func (s *Service) AssessRisk(ctx context.Context, donorID string) risk.Profile {
	p := s.risk.Assess(ctx, donorID)
	metrics.RiskAssessmentsTotal.WithLabelValues(string(p.RiskLevel)).Inc()
	return p
}

func observeVerdict(v moderation.Verdict) {
	metrics.VerdictsTotal.WithLabelValues(v.Outcome()).Inc()
	metrics.ModerationScore.Observe(float64(v.DisplayScore()))
	for _, is := range v.Issues {
		metrics.IssuesTotal.WithLabelValues(is.Field, is.Type).Inc()
	}
}
