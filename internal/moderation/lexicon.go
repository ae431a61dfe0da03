package moderation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pattern is a named regular expression together with the human readable
// reason reported when it matches.
type Pattern struct {
	Name   string `yaml:"name"`
	Expr   string `yaml:"expr"`
	Reason string `yaml:"reason"`
}

// ContactPatterns detect the presence of contact details in free text.
type ContactPatterns struct {
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
}

// Lexicon is the static word and pattern corpus the detectors are built
// from. Swapping the lexicon changes what is detected without touching
// detector logic.
//
// Allow is empty by default. Words on it are never flagged, neither by the
// token pass nor by the leetspeak pass.
type Lexicon struct {
	Profanity          []string        `yaml:"profanity"`
	Allow              []string        `yaml:"allow"`
	SpamPatterns       []Pattern       `yaml:"spam_patterns"`
	SuspiciousPatterns []Pattern       `yaml:"suspicious_patterns"`
	Contact            ContactPatterns `yaml:"contact"`
}

// DefaultLexicon returns the built-in corpus.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Profanity: []string{
			"ass", "asshole", "bastard", "bitch", "bollocks", "crap",
			"cunt", "damn", "dick", "fuck", "piss", "prick", "pussy",
			"shit", "slut", "twat", "wanker", "whore",
		},
		SpamPatterns: []Pattern{
			{Name: "promo_phrase", Expr: `(?i)\b(buy now|click here|limited time|act now|order now|free money|make money( fast)?|earn \$?\d+|100% free|risk[- ]free)\b`, Reason: "Promotional spam phrasing"},
			{Name: "phone_number", Expr: `\b\d{10,}\b|\(?\b\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`, Reason: "Contains phone number"},
			{Name: "url", Expr: `(?i)(https?://\S+|www\.\S+)`, Reason: "Contains URL"},
			{Name: "financial_pharma", Expr: `(?i)\b(viagra|cialis|casino|lottery|bitcoin|crypto(currency)?|forex|payday loan|investment opportunity)\b`, Reason: "Financial or pharmaceutical spam keywords"},
			{Name: "caps_run", Expr: `[A-Z]{5,}`, Reason: "Excessive capital letters"},
		},
		SuspiciousPatterns: []Pattern{
			{Name: "scam", Expr: `(?i)\b(wire transfer|western union|money ?gram|gift cards?|advance fee|send (me )?money|pay upfront|processing fee|shipping fee first)\b`, Reason: "Possible scam language"},
			{Name: "fraud", Expr: `(?i)\b(fake|counterfeit|replica|stolen|no questions asked)\b`, Reason: "Possible fraudulent or stolen goods"},
			{Name: "illegal", Expr: `(?i)\b(drugs?|weed|cocaine|weapons?|guns?|ammo|ammunition|prescription pills)\b`, Reason: "Possible illegal or restricted items"},
			{Name: "personal_data", Expr: `(?i)\b(ssn|social security( number)?|bank account|credit card|debit card|password|pin (code|number)|routing number|passport (number|scan))\b`, Reason: "Requests personal or financial information"},
			{Name: "private_meeting", Expr: `(?i)\b(meet (me )?(privately|alone|in private)|(late at|after|at) (night|midnight|dark)|come alone)\b`, Reason: "Unusual private meeting arrangement"},
		},
		Contact: ContactPatterns{
			Email: `[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
			Phone: `(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`,
		},
	}
}

// LoadLexicon reads a YAML lexicon from path. Sections omitted from the file
// keep their built-in defaults.
func LoadLexicon(path string) (Lexicon, error) {
	lex := DefaultLexicon()

	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("moderation: read lexicon: %w", err)
	}

	var file Lexicon
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Lexicon{}, fmt.Errorf("moderation: parse lexicon: %w", err)
	}

	if len(file.Profanity) > 0 {
		lex.Profanity = file.Profanity
	}
	if len(file.Allow) > 0 {
		lex.Allow = file.Allow
	}
	if len(file.SpamPatterns) > 0 {
		lex.SpamPatterns = file.SpamPatterns
	}
	if len(file.SuspiciousPatterns) > 0 {
		lex.SuspiciousPatterns = file.SuspiciousPatterns
	}
	if file.Contact.Email != "" {
		lex.Contact.Email = file.Contact.Email
	}
	if file.Contact.Phone != "" {
		lex.Contact.Phone = file.Contact.Phone
	}
	return lex, nil
}

// compiledPattern is a Pattern after regex compilation.
type compiledPattern struct {
	name   string
	reason string
	re     *regexp.Regexp
}

func compilePatterns(kind string, patterns []Pattern) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Expr == "" {
			return nil, fmt.Errorf("moderation: %s pattern %q has empty expression", kind, p.Name)
		}
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("moderation: compile %s pattern %q: %w", kind, p.Name, err)
		}
		reason := p.Reason
		if reason == "" {
			reason = p.Name
		}
		out = append(out, compiledPattern{name: p.Name, reason: reason, re: re})
	}
	return out, nil
}

// normalizeWords lowercases, trims and deduplicates a word list, dropping
// empty entries. Order of first appearance is preserved.
func normalizeWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

var errEmptyContactPattern = errors.New("moderation: contact patterns must not be empty")
