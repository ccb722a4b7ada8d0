package render

import (
	"fmt"
	"strings"

	"ai-recall-be/internal/entity"
	"ai-recall-be/pkg/rag/search"
	"ai-recall-be/pkg/source"
)

// Citation carries enough of a retrieved record to render a link back
// to the original saved content.
type Citation struct {
	SourceTag string `json:"source_tag"`
	Label     string `json:"label"`
	URL       string `json:"url"`
}

// EmptyContext is injected when retrieval found nothing, so the model
// answers "no relevant saved content" instead of hallucinating sources.
const EmptyContext = "(no saved content matched this question)"

// Context renders retrieved hits as a numbered, source-tagged block.
// Each source tag has its own formatter, mirroring ingestion's closed
// provider set.
func Context(hits []search.Hit) string {
	if len(hits) == 0 {
		return EmptyContext
	}

	var b strings.Builder
	for i, hit := range hits {
		b.WriteString(fmt.Sprintf("[%d] %s\n", i+1, formatItem(hit.Item)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatItem(item *entity.ContentItem) string {
	switch item.SourceTag {
	case source.TagTwitter:
		return fmt.Sprintf("(twitter) tweet by @%s: %s", item.Author, item.Document)
	case source.TagReddit:
		sub := ""
		if s, ok := item.Metadata["subreddit"].(string); ok && s != "" {
			sub = " in r/" + s
		}
		return fmt.Sprintf("(reddit) saved%s by u/%s: %s", sub, item.Author, item.Document)
	case source.TagPocket:
		return fmt.Sprintf("(pocket) %q: %s", item.Title, item.Document)
	default:
		return fmt.Sprintf("(%s) %s", item.SourceTag, item.Document)
	}
}

// Citations builds the citation list parallel to the rendered context:
// citation N corresponds to context entry [N].
func Citations(hits []search.Hit) []Citation {
	citations := make([]Citation, 0, len(hits))
	for _, hit := range hits {
		citations = append(citations, Citation{
			SourceTag: hit.Item.SourceTag,
			Label:     label(hit.Item),
			URL:       hit.Item.URL,
		})
	}
	return citations
}

func label(item *entity.ContentItem) string {
	if item.Title != "" {
		return item.Title
	}
	if item.URL != "" {
		return item.URL
	}
	return item.StableId
}
