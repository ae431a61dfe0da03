package moderation

// Field names reported in issues.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
)

// Issue types.
const (
	IssueProfanity  = "profanity"
	IssueSpam       = "spam"
	IssueSuspicious = "suspicious"
)

// Score bands.
const (
	InitialScore    = 100
	AutoRejectBelow = 30
	ReviewBelow     = 70
)

// Options tune a single moderation call.
type Options struct {
	// StrictMode withholds automatic approval when a submission lands in
	// the review band.
	StrictMode bool `json:"strict_mode"`
}

// Issue is one detector finding on one field.
type Issue struct {
	Field   string   `json:"field"`
	Type    string   `json:"type"`
	Details []string `json:"details"`
}

// Verdict is the moderation decision for one submission. Score starts at
// 100 and is never clamped; use DisplayScore for presentation.
type Verdict struct {
	Approved           bool    `json:"approved"`
	Flagged            bool    `json:"flagged"`
	AutoRejected       bool    `json:"auto_rejected"`
	RequiresReview     bool    `json:"requires_review"`
	Issues             []Issue `json:"issues"`
	Score              int     `json:"score"`
	CleanedTitle       string  `json:"cleaned_title"`
	CleanedDescription string  `json:"cleaned_description"`
}

// DisplayScore returns Score clamped to [0, 100].
func (v Verdict) DisplayScore() int {
	switch {
	case v.Score < 0:
		return 0
	case v.Score > InitialScore:
		return InitialScore
	default:
		return v.Score
	}
}

// Outcome summarises the verdict as a single label: "auto_rejected",
// "review", "flagged" or "approved".
func (v Verdict) Outcome() string {
	switch {
	case v.AutoRejected:
		return "auto_rejected"
	case v.RequiresReview:
		return "review"
	case v.Flagged:
		return "flagged"
	default:
		return "approved"
	}
}
