package moderation

import (
	"reflect"
	"strings"
	"testing"
)

func TestCheckProfanity(t *testing.T) {
	d := NewProfanityDetector(DefaultLexicon())

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"exact word", "what the fuck", []string{"fuck"}},
		{"punctuation stripped", "what the fuck!", []string{"fuck"}},
		{"case insensitive", "SHIT happens", []string{"shit"}},
		{"repeated word reported once", "shit shit SHIT", []string{"shit"}},
		{"padded token", "fuckk this", []string{"fuck"}},
		{"long word found by normalized pass", "unfuckingbelievable", []string{"leetspeak:fuck"}},
		{"long word containing listed word", "passenger seat", []string{"leetspeak:ass"}},
		{"leetspeak digits", "a55 clown", []string{"leetspeak:ass"}},
		{"leetspeak symbol", "d@mn it", []string{"leetspeak:damn"}},
		{"leetspeak mixed", "sh1t happens", []string{"leetspeak:shit"}},
		{"short word containing listed word", "first class glass", []string{"ass"}},
		{"symbols only", "@$$", []string{"leetspeak:ass"}},
		{"symbols after word", "you @$$", []string{"leetspeak:ass"}},
		{"digits and symbols", "price is $455", []string{"leetspeak:ass"}},
		{"clean", "Gently used, free to good home", []string{}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Check(tt.input)
			if !reflect.DeepEqual(got.FlaggedWords, tt.want) {
				t.Errorf("Check(%q).FlaggedWords = %v, want %v", tt.input, got.FlaggedWords, tt.want)
			}
			if got.HasProfanity != (len(tt.want) > 0) {
				t.Errorf("Check(%q).HasProfanity = %v, want %v", tt.input, got.HasProfanity, len(tt.want) > 0)
			}
		})
	}
}

func TestCheckProfanity_TokenAndLeetspeakNotDuplicated(t *testing.T) {
	d := NewProfanityDetector(DefaultLexicon())

	got := d.Check("shit and sh1t")
	want := []string{"shit"}
	if !reflect.DeepEqual(got.FlaggedWords, want) {
		t.Errorf("FlaggedWords = %v, want %v", got.FlaggedWords, want)
	}
}

func TestCheckProfanity_AllowList(t *testing.T) {
	lex := DefaultLexicon()
	lex.Allow = []string{"Class", "glass"}
	d := NewProfanityDetector(lex)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"allowed words skipped", "first class glass", []string{}},
		{"allowed word with punctuation", "glass!", []string{}},
		{"other tokens still checked", "glass @$$", []string{"leetspeak:ass"}},
		{"unlisted word still flagged", "brass", []string{"ass"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Check(tt.input)
			if !reflect.DeepEqual(got.FlaggedWords, tt.want) {
				t.Errorf("Check(%q).FlaggedWords = %v, want %v", tt.input, got.FlaggedWords, tt.want)
			}
		})
	}
}

func TestDefaultLexicon_AllowListEmpty(t *testing.T) {
	if n := len(DefaultLexicon().Allow); n != 0 {
		t.Errorf("default allow list has %d entries, want 0", n)
	}
}

func TestCensor(t *testing.T) {
	d := NewProfanityDetector(DefaultLexicon())

	tests := []struct {
		input string
		want  string
	}{
		{"What the FUCK is this", "What the **** is this"},
		{"you ass, asshole", "you ***, *******"},
		{"first class glass", "first class glass"},
		{"Shit. Shit!", "****. ****!"},
		{"a55 clown", "a55 clown"},
		{"", ""},
	}

	for _, tt := range tests {
		got := d.Censor(tt.input)
		if got != tt.want {
			t.Errorf("Censor(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCensor_Idempotent(t *testing.T) {
	d := NewProfanityDetector(DefaultLexicon())

	inputs := []string{
		"What the FUCK is this",
		"bitch bitch BITCH",
		"asshole ass assassin",
		"clean text only",
		"shit-faced prick",
		"***",
		"",
	}

	for _, in := range inputs {
		once := d.Censor(in)
		twice := d.Censor(once)
		if once != twice {
			t.Errorf("Censor not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestCensor_PreservesLength(t *testing.T) {
	d := NewProfanityDetector(DefaultLexicon())

	in := "This damn sofa is a piss-poor fit"
	got := d.Censor(in)
	if len(got) != len(in) {
		t.Fatalf("Censor changed length: %d -> %d (%q)", len(in), len(got), got)
	}
	if strings.Contains(strings.ToLower(got), "damn") || strings.Contains(strings.ToLower(got), "piss") {
		t.Errorf("Censor left profanity in %q", got)
	}
}

func TestNewProfanityDetector_EmptyAndWhitespace(t *testing.T) {
	d := NewProfanityDetector(Lexicon{Profanity: []string{"", "  ", "Valid", "valid"}})

	if len(d.words) != 1 || d.words[0] != "valid" {
		t.Errorf("words = %v, want [valid]", d.words)
	}
}

func TestProfanity_EmptyList(t *testing.T) {
	d := NewProfanityDetector(Lexicon{})

	if r := d.Check("fuck"); r.HasProfanity {
		t.Errorf("empty lexicon flagged %v", r.FlaggedWords)
	}
	if got := d.Censor("fuck"); got != "fuck" {
		t.Errorf("Censor with empty lexicon = %q", got)
	}
}

func TestNormalizeLeet(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello", "hello"},
		{"h3ll0", "hello"},
		{"@ss", "ass"},
		{"$h1t", "shit"},
		{"UPPER", "upper"},
		{"4553", "asse"},
		{"ch@ng3", "change"},
	}

	for _, tt := range tests {
		got := normalizeLeet(tt.input)
		if got != tt.want {
			t.Errorf("normalizeLeet(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLettersOnly(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello!", "hello"},
		{"a55", "a"},
		{"f.u.c.k", "fuck"},
		{"123", ""},
		{"café", "café"},
	}

	for _, tt := range tests {
		if got := lettersOnly(tt.input); got != tt.want {
			t.Errorf("lettersOnly(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func BenchmarkCheckProfanity(b *testing.B) {
	d := NewProfanityDetector(DefaultLexicon())
	msg := "Solid oak dining table with four matching chairs, lightly used and in great condition"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Check(msg)
	}
}
