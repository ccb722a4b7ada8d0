package syncengine

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses whitespace runs",
			in:   "a  b\t\tc\n\nd",
			want: "a b c d",
		},
		{
			name: "trims leading and trailing space",
			in:   "  hello world  ",
			want: "hello world",
		},
		{
			name: "empty input stays empty",
			in:   "",
			want: "",
		},
		{
			name: "whitespace-only collapses to empty",
			in:   " \n\t ",
			want: "",
		},
		{
			name: "markdown links keep their label",
			in:   "see [the docs](https://example.com/docs) for details",
			want: "see the docs for details",
		},
		{
			name: "strips emphasis and entity noise",
			in:   "**bold** and __underlined__ &amp; `code`",
			want: "bold and underlined & `code`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preprocess(tt.in); got != tt.want {
				t.Errorf("Preprocess(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPreprocessTruncatesAfterCollapsing(t *testing.T) {
	// Double-spaced input collapses to exactly the budget, so nothing
	// should be cut; the same input one word longer must be cut to the
	// budget exactly.
	word := strings.Repeat("x", 9)
	words := make([]string, MaxDocumentChars/10)
	for i := range words {
		words[i] = word
	}
	in := strings.Join(words, "  ") // collapses to budget minus one char

	got := Preprocess(in)
	if n := utf8.RuneCountInString(got); n > MaxDocumentChars {
		t.Fatalf("rune count = %d, exceeds budget", n)
	}

	long := in + " " + strings.Repeat("y", MaxDocumentChars)
	got = Preprocess(long)
	if n := utf8.RuneCountInString(got); n != MaxDocumentChars {
		t.Errorf("rune count = %d, want exactly %d", n, MaxDocumentChars)
	}
}

func TestPreprocessBudgetCountsRunes(t *testing.T) {
	// Two-byte runes: a byte-length cut would halve the kept text and
	// could land mid-sequence.
	in := strings.Repeat("é", MaxDocumentChars+5)

	got := Preprocess(in)
	if n := utf8.RuneCountInString(got); n != MaxDocumentChars {
		t.Errorf("rune count = %d, want %d", n, MaxDocumentChars)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation produced invalid UTF-8")
	}
	if !strings.HasSuffix(got, "é") {
		t.Error("truncation tore the final rune")
	}
}
