package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ai-recall-be/internal/entity"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const redditAPIBase = "https://oauth.reddit.com"

// RedditProvider mirrors a user's saved listing. Reddit paginates with
// "after" fullname tokens and mixes comments (t1) and posts (t3) in one
// listing.
type RedditProvider struct {
	policy    *CallPolicy
	baseURL   string
	userAgent string
}

func NewRedditProvider(policy *CallPolicy, userAgent string) *RedditProvider {
	return &RedditProvider{
		policy:    policy,
		baseURL:   redditAPIBase,
		userAgent: userAgent,
	}
}

func NewRedditProviderWithBaseURL(policy *CallPolicy, userAgent string, baseURL string) *RedditProvider {
	return &RedditProvider{
		policy:    policy,
		baseURL:   baseURL,
		userAgent: userAgent,
	}
}

func (p *RedditProvider) Tag() string {
	return TagReddit
}

type redditThing struct {
	Kind string `json:"kind"`
	Data struct {
		Name       string  `json:"name"`
		Title      string  `json:"title"`
		Selftext   string  `json:"selftext"`
		Body       string  `json:"body"`
		Author     string  `json:"author"`
		Subreddit  string  `json:"subreddit"`
		Permalink  string  `json:"permalink"`
		URL        string  `json:"url"`
		CreatedUTC float64 `json:"created_utc"`
	} `json:"data"`
}

type redditListing struct {
	Data struct {
		After    string        `json:"after"`
		Children []redditThing `json:"children"`
	} `json:"data"`
}

func (p *RedditProvider) FetchItems(ctx context.Context, conn *entity.Connection, cursor *int64) ItemIterator {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: conn.AccessToken}))
	client.Transport = &userAgentTransport{base: client.Transport, userAgent: p.userAgent}

	fetch := func(ctx context.Context, pageToken string) ([]*RawItem, string, error) {
		q := url.Values{}
		q.Set("limit", "100")
		q.Set("raw_json", "1")
		if pageToken != "" {
			q.Set("after", pageToken)
		}
		endpoint := fmt.Sprintf("%s/user/%s/saved?%s", p.baseURL, conn.ExternalUsername, q.Encode())

		var listing redditListing
		err := p.policy.Do(ctx, func(ctx context.Context) error {
			return getJSON(ctx, client, endpoint, &listing)
		})
		if err != nil {
			return nil, "", err
		}

		items := make([]*RawItem, 0, len(listing.Data.Children))
		for _, child := range listing.Data.Children {
			item := p.mapThing(child)
			if item == nil {
				continue
			}
			items = append(items, item)
		}
		return items, listing.Data.After, nil
	}

	return newPagedIterator(fetch, cursor)
}

// mapThing converts one listing child. Unknown kinds are dropped;
// a thing without a fullname is flagged malformed rather than failing
// the page.
func (p *RedditProvider) mapThing(thing redditThing) *RawItem {
	d := thing.Data
	if d.Name == "" {
		return &RawItem{Malformed: "reddit thing without fullname"}
	}

	var text, title string
	switch thing.Kind {
	case "t3":
		title = d.Title
		text = d.Selftext
		if text == "" {
			text = d.Title
		}
	case "t1":
		text = d.Body
		title = d.Body
	default:
		return nil
	}

	return &RawItem{
		Id:            d.Name,
		Title:         title,
		Text:          text,
		URL:           "https://www.reddit.com" + d.Permalink,
		Author:        d.Author,
		RecencyMarker: int64(d.CreatedUTC * 1000),
		Extra: map[string]interface{}{
			"kind":      thing.Kind,
			"subreddit": d.Subreddit,
		},
	}
}

func (p *RedditProvider) ExtractText(item *RawItem) string {
	if item.Text == "" {
		return ""
	}
	sub, _ := item.Extra["subreddit"].(string)
	if sub != "" {
		return fmt.Sprintf("Saved from r/%s by u/%s: %s", sub, item.Author, item.Text)
	}
	return item.Text
}

func (p *RedditProvider) StableId(item *RawItem) string {
	return item.Id
}

func (p *RedditProvider) ToRecord(ownerId uuid.UUID, item *RawItem, embedding []float32) *entity.ContentItem {
	title := truncateTitle(strings.TrimSpace(item.Title))
	return &entity.ContentItem{
		Id:             uuid.New(),
		UserId:         ownerId,
		SourceTag:      TagReddit,
		StableId:       item.Id,
		Title:          title,
		URL:            item.URL,
		Author:         item.Author,
		RecencyMarker:  item.RecencyMarker,
		EmbeddingValue: embedding,
		Metadata:       item.Extra,
		StoredAt:       time.Now(),
	}
}
