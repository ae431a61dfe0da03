// Package listing provides PostgreSQL-backed storage for the moderation
// outcome of donation listings. It is the write side of a verdict (score,
// status, cleaned text) and the read side of donor risk assessment.
package listing

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/kindshare/moderation/internal/moderation"
	"github.com/kindshare/moderation/internal/risk"
)

// Listing statuses, matching the CHECK constraint on the listings table.
const (
	StatusActive        = "active"
	StatusPendingReview = "pending_review"
	StatusRejected      = "rejected"
)

// Record is the persisted moderation outcome of one listing.
type Record struct {
	ListingID       string
	DonorID         string
	Title           string
	Description     string
	ModerationScore int
	Status          string
	Flagged         bool
	RequiresReview  bool
}

// RecordFromVerdict builds the record to persist for a verdict. Cleaned
// text replaces the submitted text so censored words never reach storage.
func RecordFromVerdict(listingID, donorID string, v moderation.Verdict) Record {
	return Record{
		ListingID:       listingID,
		DonorID:         donorID,
		Title:           v.CleanedTitle,
		Description:     v.CleanedDescription,
		ModerationScore: v.Score,
		Status:          StatusFor(v),
		Flagged:         v.Flagged,
		RequiresReview:  v.RequiresReview,
	}
}

// StatusFor maps a verdict to a listing status.
func StatusFor(v moderation.Verdict) string {
	switch {
	case v.AutoRejected:
		return StatusRejected
	case !v.Approved:
		return StatusPendingReview
	default:
		return StatusActive
	}
}

// Store manages listing moderation records in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a new listing store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL using dsn and waits for it to accept
// connections.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("listing: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			return db, nil
		}
		select {
		case <-ctx.Done():
			db.Close()
			return nil, fmt.Errorf("listing: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	db.Close()
	return nil, fmt.Errorf("listing: ping failed after retries: %w", err)
}

// RecordModeration inserts or updates a listing's moderation outcome. An
// edit keeps the original created_at so it stays in the same risk window.
func (s *Store) RecordModeration(ctx context.Context, r Record) error {
	const query = `
		INSERT INTO listings (id, donor_id, title, description, moderation_score, status, flagged, requires_review)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title            = EXCLUDED.title,
			description      = EXCLUDED.description,
			moderation_score = EXCLUDED.moderation_score,
			status           = EXCLUDED.status,
			flagged          = EXCLUDED.flagged,
			requires_review  = EXCLUDED.requires_review,
			updated_at       = NOW()`

	_, err := s.db.ExecContext(ctx, query,
		r.ListingID,
		r.DonorID,
		r.Title,
		r.Description,
		r.ModerationScore,
		r.Status,
		r.Flagged,
		r.RequiresReview,
	)
	if err != nil {
		return fmt.Errorf("listing: upsert: %w", err)
	}
	return nil
}

// RecentModerationScores returns the score and status of every listing the
// donor created at or after since.
func (s *Store) RecentModerationScores(ctx context.Context, donorID string, since time.Time) ([]risk.ListingScore, error) {
	const query = `
		SELECT moderation_score, status
		FROM listings
		WHERE donor_id = $1
		  AND created_at >= $2`

	rows, err := s.db.QueryContext(ctx, query, donorID, since)
	if err != nil {
		return nil, fmt.Errorf("listing: recent scores: %w", err)
	}
	defer rows.Close()

	var out []risk.ListingScore
	for rows.Next() {
		var ls risk.ListingScore
		if err := rows.Scan(&ls.ModerationScore, &ls.Status); err != nil {
			return nil, fmt.Errorf("listing: scan: %w", err)
		}
		out = append(out, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing: rows: %w", err)
	}
	return out, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
