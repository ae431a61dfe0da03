package moderation

import "regexp"

// Flags raised by the contact detectors.
const (
	FlagEmail = "Contains email address"
	FlagPhone = "Contains phone number"
)

// SuspiciousResult is the outcome of a suspicious-content check. Flags are
// in pattern order, followed by contact flags.
type SuspiciousResult struct {
	IsSuspicious bool     `json:"is_suspicious"`
	Flags        []string `json:"flags"`
}

// SuspiciousDetector looks for scam, fraud, personal-data and private
// meeting language, and for contact details embedded in listing text.
type SuspiciousDetector struct {
	patterns []compiledPattern
	email    *regexp.Regexp
	phone    *regexp.Regexp
}

// NewSuspiciousDetector compiles the lexicon's suspicious and contact
// patterns.
func NewSuspiciousDetector(lex Lexicon) (*SuspiciousDetector, error) {
	patterns, err := compilePatterns("suspicious", lex.SuspiciousPatterns)
	if err != nil {
		return nil, err
	}
	if lex.Contact.Email == "" || lex.Contact.Phone == "" {
		return nil, errEmptyContactPattern
	}
	contact, err := compilePatterns("contact", []Pattern{
		{Name: "email", Expr: lex.Contact.Email, Reason: FlagEmail},
		{Name: "phone", Expr: lex.Contact.Phone, Reason: FlagPhone},
	})
	if err != nil {
		return nil, err
	}

	return &SuspiciousDetector{
		patterns: patterns,
		email:    contact[0].re,
		phone:    contact[1].re,
	}, nil
}

// Check reports one flag per matching pattern. Only presence of contact
// details is detected, not their validity.
func (d *SuspiciousDetector) Check(text string) SuspiciousResult {
	result := SuspiciousResult{Flags: []string{}}
	if text == "" {
		return result
	}

	for _, p := range d.patterns {
		if p.re.MatchString(text) {
			result.Flags = append(result.Flags, p.reason)
		}
	}
	if d.email.MatchString(text) {
		result.Flags = append(result.Flags, FlagEmail)
	}
	if d.phone.MatchString(text) {
		result.Flags = append(result.Flags, FlagPhone)
	}

	result.IsSuspicious = len(result.Flags) > 0
	return result
}
