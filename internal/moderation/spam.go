package moderation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Spam rule weights and thresholds.
const (
	patternWeight = 20

	capsWeight    = 15
	capsRatio     = 0.5
	capsMinLength = 20

	charRunWeight    = 10
	charRunThreshold = 5

	specialCharWeight = 10
	specialCharRatio  = 0.1

	shortTextWeight    = 5
	shortTextThreshold = 5

	wordRunThreshold = 3

	// SpamThreshold is the score at which text counts as spam.
	SpamThreshold = 30
)

// SpamResult is the outcome of a spam check. Reasons are in rule order.
type SpamResult struct {
	IsSpam    bool     `json:"is_spam"`
	SpamScore int      `json:"spam_score"`
	Reasons   []string `json:"reasons"`
}

// SpamRule describes one entry of the active rule set.
type SpamRule struct {
	Name   string
	Weight int
}

// spamRule pairs a predicate with the weight and reason it contributes when
// it fires. Rules are independent; every rule that fires adds its weight.
type spamRule struct {
	name   string
	reason string
	weight int
	match  func(string) bool
}

// SpamDetector scores text against a pattern corpus and a fixed set of
// structural heuristics.
type SpamDetector struct {
	rules []spamRule
}

// NewSpamDetector builds the rule set from the lexicon's spam patterns
// followed by the built-in heuristics. It fails only on an invalid pattern.
func NewSpamDetector(lex Lexicon) (*SpamDetector, error) {
	patterns, err := compilePatterns("spam", lex.SpamPatterns)
	if err != nil {
		return nil, err
	}

	rules := make([]spamRule, 0, len(patterns)+6)
	for _, p := range patterns {
		re := p.re
		rules = append(rules, spamRule{name: p.name, reason: p.reason, weight: patternWeight, match: re.MatchString})
	}

	// RE2 has no backreferences, so the repeated-run members of the pattern
	// corpus are linear scans with the same pattern weight.
	rules = append(rules,
		spamRule{name: "repeated_chars", reason: "Repeated character run", weight: patternWeight, match: hasCharFlood},
		spamRule{name: "repeated_phrase", reason: "Repeated word run", weight: patternWeight, match: hasWordFlood},
	)

	// Heuristics. char_run overlaps repeated_chars above; both
	// fire on the same input and both weights count.
	rules = append(rules,
		spamRule{name: "caps_ratio", reason: "Excessive capitalization", weight: capsWeight, match: hasExcessiveCaps},
		spamRule{name: "char_run", reason: "Excessive repeated characters", weight: charRunWeight, match: hasCharFlood},
		spamRule{name: "special_chars", reason: "Too many special characters", weight: specialCharWeight, match: hasSpecialCharDensity},
		spamRule{name: "too_short", reason: "Text is too short", weight: shortTextWeight, match: isTooShort},
	)

	return &SpamDetector{rules: rules}, nil
}

// Rules returns the active rule set in evaluation order.
func (d *SpamDetector) Rules() []SpamRule {
	out := make([]SpamRule, len(d.rules))
	for i, r := range d.rules {
		out[i] = SpamRule{Name: r.name, Weight: r.weight}
	}
	return out
}

// Check runs every rule against text and sums the weights of those that
// fire. The score is not clamped. Empty text scores zero.
func (d *SpamDetector) Check(text string) SpamResult {
	result := SpamResult{Reasons: []string{}}
	if text == "" {
		return result
	}

	for _, r := range d.rules {
		if r.match(text) {
			result.SpamScore += r.weight
			result.Reasons = append(result.Reasons, r.reason)
		}
	}
	result.IsSpam = result.SpamScore >= SpamThreshold
	return result
}

// hasCharFlood returns true if text contains 5 or more consecutive identical
// characters.
func hasCharFlood(text string) bool {
	count := 1
	prev := rune(-1)
	for _, r := range text {
		if r == prev {
			count++
			if count >= charRunThreshold {
				return true
			}
		} else {
			count = 1
			prev = r
		}
	}
	return false
}

// hasWordFlood returns true if the same word appears 3 or more times
// consecutively (case-insensitive).
func hasWordFlood(text string) bool {
	words := strings.FieldsFunc(text, unicode.IsSpace)
	if len(words) < wordRunThreshold {
		return false
	}

	count := 1
	prev := ""
	for _, w := range words {
		lower := strings.ToLower(w)
		if lower == prev {
			count++
			if count >= wordRunThreshold {
				return true
			}
		} else {
			count = 1
			prev = lower
		}
	}
	return false
}

// hasExcessiveCaps reports whether more than half of a text longer than 20
// characters is upper case. The ratio is over total length, not letters.
func hasExcessiveCaps(text string) bool {
	length := utf8.RuneCountInString(text)
	if length <= capsMinLength {
		return false
	}
	upper := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return float64(upper)/float64(length) > capsRatio
}

// hasSpecialCharDensity reports whether more than 10% of the text is neither
// a letter, a digit nor whitespace.
func hasSpecialCharDensity(text string) bool {
	length := utf8.RuneCountInString(text)
	if length == 0 {
		return false
	}
	special := 0
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			special++
		}
	}
	return float64(special)/float64(length) > specialCharRatio
}

func isTooShort(text string) bool {
	return utf8.RuneCountInString(text) < shortTextThreshold
}
