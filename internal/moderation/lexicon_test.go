package moderation

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLexicon(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write lexicon: %v", err)
	}
	return path
}

func TestLoadLexicon_PartialOverride(t *testing.T) {
	path := writeLexicon(t, `
profanity:
  - zonk
  - blorp
`)

	lex, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("LoadLexicon: %v", err)
	}
	if len(lex.Profanity) != 2 {
		t.Fatalf("Profanity = %v, want 2 words", lex.Profanity)
	}
	if len(lex.SpamPatterns) != len(DefaultLexicon().SpamPatterns) {
		t.Errorf("SpamPatterns not defaulted: %d", len(lex.SpamPatterns))
	}
	if lex.Contact.Email == "" || lex.Contact.Phone == "" {
		t.Error("contact patterns not defaulted")
	}

	m, err := New(lex)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r := m.CheckProfanity("what a zonk"); !r.HasProfanity {
		t.Error("custom word not flagged")
	}
	if r := m.CheckProfanity("this is shit"); r.HasProfanity {
		t.Errorf("default word flagged after override: %v", r.FlaggedWords)
	}
}

func TestLoadLexicon_Patterns(t *testing.T) {
	path := writeLexicon(t, `
spam_patterns:
  - name: giveaway
    expr: "(?i)giveaway"
    reason: Giveaway bait
suspicious_patterns:
  - name: crypto_wallet
    expr: "(?i)wallet address"
`)

	lex, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("LoadLexicon: %v", err)
	}
	m, err := New(lex)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	spam := m.CheckSpam("huge giveaway today")
	if spam.SpamScore != 20 || len(spam.Reasons) != 1 || spam.Reasons[0] != "Giveaway bait" {
		t.Errorf("CheckSpam = %+v", spam)
	}

	// Reason falls back to the pattern name.
	sus := m.CheckSuspicious("send me your wallet address")
	if len(sus.Flags) != 1 || sus.Flags[0] != "crypto_wallet" {
		t.Errorf("CheckSuspicious = %+v", sus)
	}
}

func TestLoadLexicon_Errors(t *testing.T) {
	if _, err := LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := writeLexicon(t, "profanity: [unterminated")
	if _, err := LoadLexicon(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestNew_InvalidSuspiciousPattern(t *testing.T) {
	lex := DefaultLexicon()
	lex.SuspiciousPatterns = append(lex.SuspiciousPatterns, Pattern{Name: "bad", Expr: "[z-a]"})

	if _, err := New(lex); err == nil {
		t.Fatal("expected error for invalid suspicious pattern")
	}
}

func TestNormalizeWords(t *testing.T) {
	got := normalizeWords([]string{" Foo", "foo", "", "BAR ", "baz"})
	want := []string{"foo", "bar", "baz"}
	if len(got) != len(want) {
		t.Fatalf("normalizeWords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("normalizeWords[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
