package moderation

// fieldPenalties are the score deductions applied to findings on a field.
// Spam always deducts its own score.
type fieldPenalties struct {
	field      string
	profanity  int
	suspicious int
}

var (
	titlePenalties       = fieldPenalties{field: FieldTitle, profanity: 30, suspicious: 20}
	descriptionPenalties = fieldPenalties{field: FieldDescription, profanity: 25, suspicious: 15}
)

// Moderator runs the three detectors over a submission and decides its
// fate. It keeps no state between calls.
type Moderator struct {
	profanity  *ProfanityDetector
	spam       *SpamDetector
	suspicious *SuspiciousDetector
}

// New builds a Moderator from lex. It fails only if a pattern in the
// lexicon does not compile.
func New(lex Lexicon) (*Moderator, error) {
	spam, err := NewSpamDetector(lex)
	if err != nil {
		return nil, err
	}
	suspicious, err := NewSuspiciousDetector(lex)
	if err != nil {
		return nil, err
	}
	return &Moderator{
		profanity:  NewProfanityDetector(lex),
		spam:       spam,
		suspicious: suspicious,
	}, nil
}

// NewDefault builds a Moderator from DefaultLexicon.
func NewDefault() *Moderator {
	m, err := New(DefaultLexicon())
	if err != nil {
		panic("moderation: default lexicon: " + err.Error())
	}
	return m
}

// CheckProfanity runs only the profanity detector.
func (m *Moderator) CheckProfanity(text string) ProfanityResult { return m.profanity.Check(text) }

// CheckSpam runs only the spam detector.
func (m *Moderator) CheckSpam(text string) SpamResult { return m.spam.Check(text) }

// CheckSuspicious runs only the suspicious-content detector.
func (m *Moderator) CheckSuspicious(text string) SuspiciousResult { return m.suspicious.Check(text) }

// Censor masks listed profanity in text.
func (m *Moderator) Censor(text string) string { return m.profanity.Censor(text) }

// SpamRules returns the active spam rule set.
func (m *Moderator) SpamRules() []SpamRule { return m.spam.Rules() }

// Moderate scores a title and description. An empty field is treated as
// absent and raises no issues.
//
// Issues are appended title first, then description, and within a field in
// profanity, spam, suspicious order. A score under 30 auto-rejects; a score
// under 70 or any suspicious finding sends the submission to review, where
// strict mode withholds approval.
func (m *Moderator) Moderate(title, description string, opts Options) Verdict {
	v := Verdict{
		Approved:           true,
		Issues:             []Issue{},
		Score:              InitialScore,
		CleanedTitle:       title,
		CleanedDescription: description,
	}

	if title != "" {
		if censored, ok := m.moderateField(&v, title, titlePenalties); ok {
			v.CleanedTitle = censored
		}
	}
	if description != "" {
		if censored, ok := m.moderateField(&v, description, descriptionPenalties); ok {
			v.CleanedDescription = censored
		}
	}

	switch {
	case v.Score < AutoRejectBelow:
		v.AutoRejected = true
		v.Approved = false
	case v.Score < ReviewBelow || v.RequiresReview:
		v.RequiresReview = true
		v.Approved = !opts.StrictMode
	}
	return v
}

// moderateField applies one field's findings to v. It returns the censored
// text and true when profanity was found.
func (m *Moderator) moderateField(v *Verdict, text string, p fieldPenalties) (string, bool) {
	var censored string
	profane := false

	if r := m.profanity.Check(text); r.HasProfanity {
		v.Score -= p.profanity
		v.Flagged = true
		v.Issues = append(v.Issues, Issue{Field: p.field, Type: IssueProfanity, Details: r.FlaggedWords})
		censored = m.profanity.Censor(text)
		profane = true
	}

	if r := m.spam.Check(text); r.IsSpam {
		v.Score -= r.SpamScore
		v.Flagged = true
		v.Issues = append(v.Issues, Issue{Field: p.field, Type: IssueSpam, Details: r.Reasons})
	}

	if r := m.suspicious.Check(text); r.IsSuspicious {
		v.Score -= p.suspicious
		v.RequiresReview = true
		v.Issues = append(v.Issues, Issue{Field: p.field, Type: IssueSuspicious, Details: r.Flags})
	}

	return censored, profane
}
