package review

import (
	"github.com/kindshare/moderation/internal/moderation"
	"github.com/kindshare/moderation/internal/risk"
)

// Request asks for a listing's title and description to be moderated. It
// is the payload of moderation.check and POST /api/v1/moderate.
type Request struct {
	RequestID   string `json:"request_id"`
	ListingID   string `json:"listing_id"` // empty: moderate without persisting
	DonorID     string `json:"donor_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StrictMode  bool   `json:"strict_mode"`
	Ts          int64  `json:"ts"`
}

// Result is the reply to a Request.
type Result struct {
	RequestID    string             `json:"request_id"`
	ListingID    string             `json:"listing_id,omitempty"`
	DonorID      string             `json:"donor_id"`
	Verdict      moderation.Verdict `json:"verdict"`
	DisplayScore int                `json:"display_score"`
	Status       string             `json:"status"`
	StrictMode   bool               `json:"strict_mode"`
	Risk         risk.Profile       `json:"risk"`
	Error        string             `json:"error,omitempty"`
}

// RiskRequest asks for a donor's risk profile. It is the payload of
// risk.assess.
type RiskRequest struct {
	DonorID string `json:"donor_id"`
}
