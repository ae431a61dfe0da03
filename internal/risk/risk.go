// Package risk classifies donors by how many of their recent listings were
// scored below the review threshold. The historical query is the only I/O
// on the moderation path, so it is bounded by a timeout and fails open to
// an "unknown" profile rather than blocking a submission.
package risk

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Level is a donor's risk classification.
type Level string

const (
	LevelLow     Level = "low"
	LevelMedium  Level = "medium"
	LevelHigh    Level = "high"
	LevelUnknown Level = "unknown"
)

const (
	// FlaggedScoreBelow is the moderation score under which a past listing
	// counts as flagged.
	FlaggedScoreBelow = 70

	highRiskAt         = 3
	mediumRiskAt       = 1
	extraModerationAt  = 2
	defaultRiskWindow  = 30 * 24 * time.Hour
	defaultRiskTimeout = 2 * time.Second
)

// Profile is the risk assessment for one donor.
type Profile struct {
	UserID                  string `json:"user_id"`
	TotalListings           int    `json:"total_listings"`
	FlaggedCount            int    `json:"flagged_count"`
	RiskLevel               Level  `json:"risk_level"`
	RequiresExtraModeration bool   `json:"requires_extra_moderation"`
}

// ListingScore is the projection of a past listing the assessor needs.
type ListingScore struct {
	ModerationScore int
	Status          string
}

// History reads a donor's listings created at or after since.
type History interface {
	RecentModerationScores(ctx context.Context, donorID string, since time.Time) ([]ListingScore, error)
}

// CacheEntry is the result of a cache lookup. Generation is the donor's
// invalidation counter at read time and must be handed back to Set.
type CacheEntry struct {
	Profile    Profile
	Found      bool
	Generation int64
}

// Cache stores computed profiles. Implementations must tolerate concurrent
// use.
//
// Every Invalidate advances the donor's generation. Set stores a profile
// only if the generation still equals the one returned by the Get that
// preceded the history query, so a profile computed before a write can
// never be cached after that write's invalidation.
type Cache interface {
	Get(ctx context.Context, userID string) (CacheEntry, error)
	Set(ctx context.Context, p Profile, generation int64) error
	Invalidate(ctx context.Context, userID string) error
}

// Config bounds the historical query.
type Config struct {
	Window  time.Duration // how far back to look
	Timeout time.Duration // max time spent on the query
}

// DefaultConfig looks back 30 days with a 2 second query budget.
func DefaultConfig() Config {
	return Config{Window: defaultRiskWindow, Timeout: defaultRiskTimeout}
}

// Assessor computes donor risk profiles.
type Assessor struct {
	history History
	cache   Cache
	cfg     Config
	now     func() time.Time
}

// NewAssessor creates an Assessor over history. Zero config fields take
// their defaults.
func NewAssessor(history History, cfg Config) *Assessor {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Assessor{history: history, cfg: cfg, now: time.Now}
}

// WithCache enables profile caching. Cache errors are logged and bypassed.
func (a *Assessor) WithCache(c Cache) *Assessor {
	a.cache = c
	return a
}

// Assess returns userID's risk profile. It never fails: if the history
// query errors or exceeds the configured timeout the error is logged and a
// profile with RiskLevel "unknown" is returned. Each cache call gets the
// same timeout as the query; a slow or failing cache is bypassed.
func (a *Assessor) Assess(ctx context.Context, userID string) Profile {
	var (
		generation int64
		cacheable  bool
	)
	if a.cache != nil {
		cctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		e, err := a.cache.Get(cctx, userID)
		cancel()
		switch {
		case err != nil:
			log.Printf("[risk] cache get user=%s: %v (failing open)", userID, err)
		case e.Found:
			return e.Profile
		default:
			generation, cacheable = e.Generation, true
		}
	}

	rows, err := a.query(ctx, userID)
	if err != nil {
		log.Printf("[risk] assess user=%s: %v (failing open)", userID, err)
		return Unknown(userID)
	}

	p := Classify(userID, rows)
	if cacheable {
		cctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		if err := a.cache.Set(cctx, p, generation); err != nil {
			log.Printf("[risk] cache set user=%s: %v", userID, err)
		}
		cancel()
	}
	return p
}

// Invalidate drops any cached profile for userID and discards profiles
// still being computed from older history. Callers invoke it after
// persisting a new moderation score so the next Assess sees the write.
func (a *Assessor) Invalidate(ctx context.Context, userID string) {
	if a.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	if err := a.cache.Invalidate(ctx, userID); err != nil {
		log.Printf("[risk] cache invalidate user=%s: %v", userID, err)
	}
}

type queryResult struct {
	rows []ListingScore
	err  error
}

// query runs the history lookup under the configured timeout. The lookup
// runs in its own goroutine so a store that ignores ctx still cannot hold
// the caller past the deadline.
func (a *Assessor) query(ctx context.Context, userID string) ([]ListingScore, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	since := a.now().Add(-a.cfg.Window)
	ch := make(chan queryResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- queryResult{err: fmt.Errorf("history panic: %v", r)}
			}
		}()
		rows, err := a.history.RecentModerationScores(ctx, userID, since)
		ch <- queryResult{rows: rows, err: err}
	}()

	select {
	case res := <-ch:
		return res.rows, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("history query: %w", ctx.Err())
	}
}

// Classify derives a profile from a donor's recent listings.
func Classify(userID string, rows []ListingScore) Profile {
	flagged := 0
	for _, r := range rows {
		if r.ModerationScore < FlaggedScoreBelow {
			flagged++
		}
	}

	level := LevelLow
	switch {
	case flagged >= highRiskAt:
		level = LevelHigh
	case flagged >= mediumRiskAt:
		level = LevelMedium
	}

	return Profile{
		UserID:                  userID,
		TotalListings:           len(rows),
		FlaggedCount:            flagged,
		RiskLevel:               level,
		RequiresExtraModeration: flagged >= extraModerationAt,
	}
}

// Unknown is the degraded profile returned when history is unavailable.
func Unknown(userID string) Profile {
	return Profile{UserID: userID, RiskLevel: LevelUnknown}
}
