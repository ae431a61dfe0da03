package moderation

import (
	"reflect"
	"testing"
)

func newTestSpamDetector(t testing.TB) *SpamDetector {
	t.Helper()
	d, err := NewSpamDetector(DefaultLexicon())
	if err != nil {
		t.Fatalf("NewSpamDetector: %v", err)
	}
	return d
}

// TestSpam_PromoPhoneURL covers the canonical promotional listing.
func TestSpam_PromoPhoneURL(t *testing.T) {
	d := newTestSpamDetector(t)

	got := d.Check("BUY NOW CALL 9876543210 www.example.com")
	if !got.IsSpam {
		t.Fatalf("IsSpam = false, want true (score=%d reasons=%v)", got.SpamScore, got.Reasons)
	}
	if got.SpamScore != 60 {
		t.Errorf("SpamScore = %d, want 60", got.SpamScore)
	}
	want := []string{"Promotional spam phrasing", "Contains phone number", "Contains URL"}
	if !reflect.DeepEqual(got.Reasons, want) {
		t.Errorf("Reasons = %v, want %v", got.Reasons, want)
	}
}

func TestSpam_Scores(t *testing.T) {
	d := newTestSpamDetector(t)

	tests := []struct {
		name   string
		input  string
		score  int
		isSpam bool
	}{
		{"empty", "", 0, false},
		{"clean listing", "Gently used, free to good home", 0, false},
		{"clean long listing", "Solid oak dining table with four chairs", 0, false},
		{"too short", "hi", 5, false},
		{"repeated word run", "free free free stuff", 20, false},
		{"special characters", "Wow!!! $$$ ### deal", 10, false},
		{"char run counted twice", "aaaaa", 30, true},
		{"shouting", "THIS IS AN AMAZING SOFA FOR SALE TODAY", 35, true},
		{"pharma", "cheap viagra here", 20, false},
		{"pharma and url", "cheap viagra at www.pills.example.com now", 40, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Check(tt.input)
			if got.SpamScore != tt.score {
				t.Errorf("Check(%q).SpamScore = %d, want %d (reasons=%v)", tt.input, got.SpamScore, tt.score, got.Reasons)
			}
			if got.IsSpam != tt.isSpam {
				t.Errorf("Check(%q).IsSpam = %v, want %v", tt.input, got.IsSpam, tt.isSpam)
			}
			if len(got.Reasons) == 0 && got.SpamScore != 0 {
				t.Errorf("Check(%q) scored %d with no reasons", tt.input, got.SpamScore)
			}
		})
	}
}

func TestSpam_Rules(t *testing.T) {
	d := newTestSpamDetector(t)

	want := []SpamRule{
		{Name: "promo_phrase", Weight: 20},
		{Name: "phone_number", Weight: 20},
		{Name: "url", Weight: 20},
		{Name: "financial_pharma", Weight: 20},
		{Name: "caps_run", Weight: 20},
		{Name: "repeated_chars", Weight: 20},
		{Name: "repeated_phrase", Weight: 20},
		{Name: "caps_ratio", Weight: 15},
		{Name: "char_run", Weight: 10},
		{Name: "special_chars", Weight: 10},
		{Name: "too_short", Weight: 5},
	}
	if got := d.Rules(); !reflect.DeepEqual(got, want) {
		t.Errorf("Rules() = %v, want %v", got, want)
	}
}

func TestSpam_InvalidPattern(t *testing.T) {
	lex := DefaultLexicon()
	lex.SpamPatterns = []Pattern{{Name: "broken", Expr: "(unclosed"}}

	if _, err := NewSpamDetector(lex); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestHasCharFlood(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"hellooooooo", true},
		{"AAAAAA", true},
		{"wow!!!!!", true},
		{"=====", true},
		{"aaaa", false},
		{"heeeel no", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := hasCharFlood(tt.input); got != tt.want {
			t.Errorf("hasCharFlood(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestHasWordFlood(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"buy buy buy", true},
		{"spam spam spam spam", true},
		{"hey buy buy buy now", true},
		{"BUY buy Buy", true},
		{"go go", false},
		{"yeah yeah whatever", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := hasWordFlood(tt.input); got != tt.want {
			t.Errorf("hasWordFlood(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestHasExcessiveCaps(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"SHORT CAPS", false},
		{"THIS IS A LONG SHOUTED TITLE", true},
		{"This Is A Title With Capitals", false},
		{"ABCDEFGHIJKLMNOPQRSTU", true},
	}

	for _, tt := range tests {
		if got := hasExcessiveCaps(tt.input); got != tt.want {
			t.Errorf("hasExcessiveCaps(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestHasSpecialCharDensity(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"plain words only", false},
		{"Gently used, free to good home", false},
		{"$$$ deal", true},
		{"a!b", true},
		{"", false},
	}

	for _, tt := range tests {
		if got := hasSpecialCharDensity(tt.input); got != tt.want {
			t.Errorf("hasSpecialCharDensity(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func BenchmarkCheckSpam(b *testing.B) {
	d := newTestSpamDetector(b)
	msg := "Solid oak dining table with four matching chairs, lightly used and in great condition"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Check(msg)
	}
}
