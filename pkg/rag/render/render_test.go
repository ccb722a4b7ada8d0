package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"ai-recall-be/internal/entity"
	"ai-recall-be/pkg/rag/search"
)

func hit(tag, title, author, doc, url string) search.Hit {
	return search.Hit{
		Item: &entity.ContentItem{
			SourceTag: tag,
			Title:     title,
			Author:    author,
			Document:  doc,
			URL:       url,
			Metadata:  map[string]interface{}{"subreddit": "golang"},
		},
		Similarity: 0.9,
	}
}

func TestContextNumbersAndTagsEntries(t *testing.T) {
	hits := []search.Hit{
		hit("twitter", "", "gopher", "channels are great", "https://t.co/1"),
		hit("reddit", "Generics question", "redditor", "how do I use constraints", "https://reddit.com/x"),
		hit("pocket", "Go at scale", "", "an article about go services", "https://example.com/go"),
	}

	got := Context(hits)

	for _, want := range []string{
		"[1] (twitter) tweet by @gopher: channels are great",
		"[2] (reddit) saved in r/golang by u/redditor: how do I use constraints",
		`[3] (pocket) "Go at scale": an article about go services`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q\ngot:\n%s", want, got)
		}
	}

	// The fixtures are ASCII, so any non-ASCII rune in the output was
	// injected by a formatter.
	for _, r := range got {
		if r >= utf8.RuneSelf {
			t.Errorf("formatter injected non-ASCII rune %q", r)
			break
		}
	}
}

func TestContextEmpty(t *testing.T) {
	if got := Context(nil); got != EmptyContext {
		t.Errorf("Context(nil) = %q, want the explicit empty block", got)
	}
}

func TestCitationsParallelToContext(t *testing.T) {
	hits := []search.Hit{
		hit("twitter", "", "gopher", "doc one", "https://t.co/1"),
		hit("pocket", "", "", "doc two", ""),
	}

	citations := Citations(hits)
	if len(citations) != len(hits) {
		t.Fatalf("len = %d, want %d", len(citations), len(hits))
	}
	if citations[0].SourceTag != "twitter" || citations[0].URL != "https://t.co/1" {
		t.Errorf("citation[0] = %+v", citations[0])
	}
	// No title and no URL falls back to the stable id as label.
	hits[1].Item.StableId = "abc123"
	citations = Citations(hits)
	if citations[1].Label != "abc123" {
		t.Errorf("label = %q, want stable id fallback", citations[1].Label)
	}
}
