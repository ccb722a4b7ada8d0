package syncengine

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxDocumentChars bounds the text sent for embedding. A character
// budget is a conservative proxy for the model's token budget.
const MaxDocumentChars = 32000

var (
	markdownLink = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	markupNoise  = strings.NewReplacer(
		"```", " ",
		"**", "",
		"__", "",
		"~~", "",
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
	)
)

// Preprocess normalizes raw extracted text for embedding: markdown
// links keep their label, markup noise is stripped, whitespace runs
// collapse to single spaces, then the result is hard-truncated.
// Truncation is a plain cutoff, not sentence-aware, and happens after
// collapsing so the budget counts real content.
func Preprocess(text string) string {
	text = markdownLink.ReplaceAllString(text, "$1")
	text = markupNoise.Replace(text)
	collapsed := strings.Join(strings.Fields(text), " ")
	// The budget is characters, not bytes: cut on a rune boundary so
	// multibyte text never ends in a torn sequence.
	if utf8.RuneCountInString(collapsed) > MaxDocumentChars {
		runes := []rune(collapsed)
		collapsed = string(runes[:MaxDocumentChars])
	}
	return collapsed
}
