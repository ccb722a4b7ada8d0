package source

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"context"

	"ai-recall-be/internal/entity"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const twitterAPIBase = "https://api.twitter.com/2"

// TwitterProvider mirrors a user's bookmarks via the v2 bookmarks
// endpoint. Bookmarks are returned newest-first with token pagination.
type TwitterProvider struct {
	policy  *CallPolicy
	baseURL string
}

func NewTwitterProvider(policy *CallPolicy) *TwitterProvider {
	return &TwitterProvider{
		policy:  policy,
		baseURL: twitterAPIBase,
	}
}

// NewTwitterProviderWithBaseURL exists for tests pointing at a local server.
func NewTwitterProviderWithBaseURL(policy *CallPolicy, baseURL string) *TwitterProvider {
	return &TwitterProvider{
		policy:  policy,
		baseURL: baseURL,
	}
}

func (p *TwitterProvider) Tag() string {
	return TagTwitter
}

type twitterTweet struct {
	Id        string `json:"id"`
	Text      string `json:"text"`
	AuthorId  string `json:"author_id"`
	CreatedAt string `json:"created_at"`
}

type twitterUser struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type twitterBookmarksResponse struct {
	Data     []twitterTweet `json:"data"`
	Includes struct {
		Users []twitterUser `json:"users"`
	} `json:"includes"`
	Meta struct {
		NextToken string `json:"next_token"`
	} `json:"meta"`
}

func (p *TwitterProvider) FetchItems(ctx context.Context, conn *entity.Connection, cursor *int64) ItemIterator {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: conn.AccessToken}))

	fetch := func(ctx context.Context, pageToken string) ([]*RawItem, string, error) {
		q := url.Values{}
		q.Set("max_results", "100")
		q.Set("tweet.fields", "created_at,author_id,text")
		q.Set("expansions", "author_id")
		q.Set("user.fields", "username,name")
		if pageToken != "" {
			q.Set("pagination_token", pageToken)
		}
		endpoint := fmt.Sprintf("%s/users/%s/bookmarks?%s", p.baseURL, conn.ExternalUsername, q.Encode())

		var decoded twitterBookmarksResponse
		err := p.policy.Do(ctx, func(ctx context.Context) error {
			return getJSON(ctx, client, endpoint, &decoded)
		})
		if err != nil {
			return nil, "", err
		}

		usernames := make(map[string]string, len(decoded.Includes.Users))
		for _, u := range decoded.Includes.Users {
			usernames[u.Id] = u.Username
		}

		items := make([]*RawItem, 0, len(decoded.Data))
		for _, t := range decoded.Data {
			createdAt, err := time.Parse(time.RFC3339, t.CreatedAt)
			if err != nil {
				items = append(items, &RawItem{
					Id:        t.Id,
					Malformed: fmt.Sprintf("bad created_at %q", t.CreatedAt),
				})
				continue
			}
			items = append(items, &RawItem{
				Id:            t.Id,
				Text:          t.Text,
				URL:           fmt.Sprintf("https://twitter.com/i/web/status/%s", t.Id),
				Author:        usernames[t.AuthorId],
				RecencyMarker: createdAt.UnixMilli(),
				Extra: map[string]interface{}{
					"author_id": t.AuthorId,
				},
			})
		}
		return items, decoded.Meta.NextToken, nil
	}

	return newPagedIterator(fetch, cursor)
}

func (p *TwitterProvider) ExtractText(item *RawItem) string {
	if item.Text == "" {
		return ""
	}
	if item.Author != "" {
		return fmt.Sprintf("Tweet by @%s: %s", item.Author, item.Text)
	}
	return item.Text
}

func (p *TwitterProvider) StableId(item *RawItem) string {
	return item.Id
}

func (p *TwitterProvider) ToRecord(ownerId uuid.UUID, item *RawItem, embedding []float32) *entity.ContentItem {
	title := truncateTitle(item.Text)
	return &entity.ContentItem{
		Id:             uuid.New(),
		UserId:         ownerId,
		SourceTag:      TagTwitter,
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

// getJSON performs one GET and maps HTTP status codes onto the source
// error taxonomy.
func getJSON(ctx context.Context, client *http.Client, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrSourceUnavailable, err)
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthExpired, res.StatusCode)
	case res.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status 429", ErrRateLimited)
	case res.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrSourceUnavailable, res.StatusCode)
	case res.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d: %s", res.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
