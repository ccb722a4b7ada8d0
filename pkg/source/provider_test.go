package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"ai-recall-be/internal/entity"

	"github.com/google/uuid"
)

func testPolicyConn() (*CallPolicy, *entity.Connection) {
	return NewCallPolicy(6000, 100), &entity.Connection{
		Id:               uuid.New(),
		UserId:           uuid.New(),
		SourceTag:        TagTwitter,
		AccessToken:      "token",
		ExternalUsername: "12345",
		Status:           entity.ConnectionStatusActive,
	}
}

func TestTwitterProviderFetchAndMap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pagination_token"); got != "" {
			t.Errorf("unexpected pagination_token %q on first page", got)
		}
		fmt.Fprint(w, `{
			"data": [
				{"id": "t2", "text": "newer tweet", "author_id": "u1", "created_at": "2024-05-02T10:00:00Z"},
				{"id": "t1", "text": "older tweet", "author_id": "u1", "created_at": "2024-05-01T10:00:00Z"},
				{"id": "bad", "text": "x", "author_id": "u1", "created_at": "not-a-date"}
			],
			"includes": {"users": [{"id": "u1", "username": "gopher", "name": "Go Pher"}]},
			"meta": {}
		}`)
	}))
	defer srv.Close()

	policy, conn := testPolicyConn()
	p := NewTwitterProviderWithBaseURL(policy, srv.URL)

	items := drain(t, p.FetchItems(context.Background(), conn, nil))
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}

	first := items[0]
	if first.Id != "t2" || first.Author != "gopher" {
		t.Errorf("first item = %+v", first)
	}
	if first.RecencyMarker != 1714644000000 {
		t.Errorf("recency marker = %d", first.RecencyMarker)
	}
	if items[2].Malformed == "" {
		t.Error("bad created_at not flagged malformed")
	}

	text := p.ExtractText(first)
	if text != "Tweet by @gopher: newer tweet" {
		t.Errorf("ExtractText = %q", text)
	}

	record := p.ToRecord(conn.UserId, first, []float32{0.1})
	if record.SourceTag != TagTwitter || record.StableId != "t2" {
		t.Errorf("record = %+v", record)
	}
}

func TestTwitterProviderAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	policy, conn := testPolicyConn()
	p := NewTwitterProviderWithBaseURL(policy, srv.URL)

	_, err := p.FetchItems(context.Background(), conn, nil).Next(context.Background())
	if !errors.Is(err, ErrAuthExpired) {
		t.Errorf("err = %v, want ErrAuthExpired", err)
	}
}

func TestRedditProviderFetchAndMap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "recall-test/1.0" {
			t.Errorf("User-Agent = %q", ua)
		}
		fmt.Fprint(w, `{
			"data": {
				"after": "",
				"children": [
					{"kind": "t3", "data": {"name": "t3_abc", "title": "A post", "selftext": "post body", "author": "alice", "subreddit": "golang", "permalink": "/r/golang/abc", "created_utc": 1714644000}},
					{"kind": "t1", "data": {"name": "t1_def", "body": "a comment", "author": "bob", "subreddit": "golang", "permalink": "/r/golang/def", "created_utc": 1714644100}},
					{"kind": "t5", "data": {"name": "t5_sub"}}
				]
			}
		}`)
	}))
	defer srv.Close()

	policy, conn := testPolicyConn()
	conn.SourceTag = TagReddit
	conn.ExternalUsername = "alice"
	p := NewRedditProviderWithBaseURL(policy, "recall-test/1.0", srv.URL)

	items := drain(t, p.FetchItems(context.Background(), conn, nil))
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2 (t5 dropped)", len(items))
	}
	post, comment := items[0], items[1]
	if post.Id != "t3_abc" || post.RecencyMarker != 1714644000000 {
		t.Errorf("post = %+v", post)
	}
	if comment.Id != "t1_def" {
		t.Errorf("comment = %+v", comment)
	}
	if got := p.ExtractText(post); got != "Saved from r/golang by u/alice: post body" {
		t.Errorf("ExtractText = %q", got)
	}
	if post.URL != "https://www.reddit.com/r/golang/abc" {
		t.Errorf("URL = %q", post.URL)
	}
}

func TestPocketProviderFullSnapshot(t *testing.T) {
	entries := []PocketEntry{
		{ItemId: "1", Title: "Go blog post", Excerpt: "about generics", URL: "https://example.com/1", AddedAt: 1000},
		{Title: "No id entry", URL: "https://example.com/2", AddedAt: 2000},
	}
	p := NewPocketProvider(entries)

	conn := &entity.Connection{UserId: uuid.New(), SourceTag: TagPocket}
	items := drain(t, p.FetchItems(context.Background(), conn, nil))
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	if got := p.ExtractText(items[0]); got != "Go blog post. about generics" {
		t.Errorf("ExtractText = %q", got)
	}
	// Missing item id falls back to the URL as stable id.
	if got := p.StableId(items[1]); got != "https://example.com/2" {
		t.Errorf("StableId = %q", got)
	}

	record := p.ToRecord(conn.UserId, items[1], []float32{0.5})
	if record.Title != "No id entry" || record.SourceTag != TagPocket {
		t.Errorf("record = %+v", record)
	}
}

func TestRecordTitleTruncatesOnRuneBoundary(t *testing.T) {
	policy, conn := testPolicyConn()
	p := NewTwitterProviderWithBaseURL(policy, "http://unused")

	item := &RawItem{Id: "t9", Text: strings.Repeat("日", 120), RecencyMarker: 1}
	record := p.ToRecord(conn.UserId, item, []float32{0.1})

	if n := utf8.RuneCountInString(record.Title); n != 80 {
		t.Errorf("title rune count = %d, want 80", n)
	}
	if !utf8.ValidString(record.Title) {
		t.Error("title is not valid UTF-8")
	}

	short := &RawItem{Id: "t10", Text: "short", RecencyMarker: 2}
	if got := p.ToRecord(conn.UserId, short, []float32{0.1}).Title; got != "short" {
		t.Errorf("short title altered: %q", got)
	}
}
