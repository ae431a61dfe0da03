package moderation

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LeetspeakPrefix marks flagged words that were only found after leetspeak
// normalization, e.g. "leetspeak:ass" for "a55".
const LeetspeakPrefix = "leetspeak:"

// maxPadding is how many extra letters a token may carry around a listed
// word and still be flagged ("fuckk", "xshitx").
const maxPadding = 2

// censorMask replaces every character of a censored word.
const censorMask = "*"

// ProfanityResult is the outcome of a profanity check. FlaggedWords is a
// deduplicated, sorted set.
type ProfanityResult struct {
	HasProfanity bool     `json:"has_profanity"`
	FlaggedWords []string `json:"flagged_words"`
}

// ProfanityDetector matches text against a curated word list, catching
// lightly padded tokens and leetspeak obfuscation.
type ProfanityDetector struct {
	words  []string
	allow  map[string]struct{}
	censor *regexp.Regexp // nil when the word list is empty
}

// NewProfanityDetector builds a detector from the lexicon's profanity and
// allow lists.
func NewProfanityDetector(lex Lexicon) *ProfanityDetector {
	words := normalizeWords(lex.Profanity)

	allow := make(map[string]struct{}, len(lex.Allow))
	for _, w := range normalizeWords(lex.Allow) {
		allow[w] = struct{}{}
	}

	return &ProfanityDetector{
		words:  words,
		allow:  allow,
		censor: buildCensorRegex(words),
	}
}

// buildCensorRegex compiles a single case-insensitive whole-word
// alternation. Longer words come first so "asshole" wins over "ass".
func buildCensorRegex(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Check reports every listed word found in text. Empty text is clean.
func (d *ProfanityDetector) Check(text string) ProfanityResult {
	if text == "" || len(d.words) == 0 {
		return ProfanityResult{FlaggedWords: []string{}}
	}

	lower := strings.ToLower(text)
	found := make(map[string]struct{})

	for _, token := range strings.Fields(lower) {
		clean := lettersOnly(token)
		if clean == "" {
			continue
		}
		if _, ok := d.allow[clean]; ok {
			continue
		}
		cleanLen := utf8.RuneCountInString(clean)
		for _, w := range d.words {
			if clean == w || (strings.Contains(clean, w) && cleanLen <= utf8.RuneCountInString(w)+maxPadding) {
				found[w] = struct{}{}
			}
		}
	}

	normalized := d.leetText(lower)
	for _, w := range d.words {
		if _, ok := found[w]; ok {
			continue
		}
		if strings.Contains(normalized, w) {
			found[LeetspeakPrefix+w] = struct{}{}
		}
	}

	flagged := make([]string, 0, len(found))
	for w := range found {
		flagged = append(flagged, w)
	}
	sort.Strings(flagged)

	return ProfanityResult{
		HasProfanity: len(flagged) > 0,
		FlaggedWords: flagged,
	}
}

// Censor masks whole-word, case-insensitive occurrences of listed words with
// one mask character per matched character. Everything else is untouched, so
// Censor(Censor(x)) == Censor(x).
func (d *ProfanityDetector) Censor(text string) string {
	if text == "" || d.censor == nil {
		return text
	}
	return d.censor.ReplaceAllStringFunc(text, func(match string) string {
		return strings.Repeat(censorMask, utf8.RuneCountInString(match))
	})
}

// leetText returns the leetspeak-normalized form of lower with allowed
// tokens removed. Listed words never contain whitespace, so rejoining the
// tokens with single spaces finds the same matches as the raw text.
func (d *ProfanityDetector) leetText(lower string) string {
	if len(d.allow) == 0 {
		return normalizeLeet(lower)
	}
	tokens := strings.Fields(lower)
	kept := tokens[:0]
	for _, token := range tokens {
		if _, ok := d.allow[lettersOnly(token)]; ok {
			continue
		}
		kept = append(kept, token)
	}
	return normalizeLeet(strings.Join(kept, " "))
}

// leetReplacer maps common digit and symbol stand-ins to letters.
var leetReplacer = strings.NewReplacer(
	"0", "o",
	"1", "i",
	"3", "e",
	"4", "a",
	"5", "s",
	"@", "a",
	"$", "s",
)

// normalizeLeet lowercases s and undoes leetspeak substitutions.
func normalizeLeet(s string) string {
	return leetReplacer.Replace(strings.ToLower(s))
}

func lettersOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
